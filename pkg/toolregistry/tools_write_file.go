package toolregistry

import (
	"fmt"
	"os"
)

// WriteFileTool writes content to a file, overwriting if it already exists.
type WriteFileTool struct{}

func (WriteFileTool) Name() string { return "write_file" }
func (WriteFileTool) Description() string {
	return "Writes content to a file. Overwrites if exists. Required args: path, content."
}

func (WriteFileTool) Execute(args map[string]any) map[string]any {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)

	if path == "" {
		return map[string]any{"error": "path is required"}
	}
	if content == "" {
		return map[string]any{"error": "content is required"}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return map[string]any{"error": fmt.Sprintf("Failed to write file: %s", err)}
	}
	return map[string]any{"result": fmt.Sprintf("Successfully wrote %d characters to %s", len(content), path)}
}
