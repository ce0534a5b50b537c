package toolregistry

// RepeatMessageTool echoes its message argument back verbatim.
type RepeatMessageTool struct{}

func (RepeatMessageTool) Name() string        { return "repeat_message" }
func (RepeatMessageTool) Description() string { return "Repeats the given message. Required args: message." }

func (RepeatMessageTool) Execute(args map[string]any) map[string]any {
	message, _ := args["message"].(string)
	return map[string]any{"echo": message}
}
