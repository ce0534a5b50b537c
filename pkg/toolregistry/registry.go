package toolregistry

import "github.com/codeready-toolchain/agentgraph/pkg/memo"

// Build assembles the fixed tool registry the orchestrator runs against.
// store backs the two memo helper tools; every other tool is pure.
func Build(store memo.Store) *Registry {
	return NewRegistry(
		RepeatMessageTool{},
		SortArrayTool{},
		StringOpsTool{},
		MathStatsTool{},
		WriteFileTool{},
		TextAnalysisTool{},
		DataAnalysisTool{},
		JSONParserTool{},
		RegexMatcherTool{},
		TaskListParserTool{},
		MemoizeTool{Store: store},
		RetrieveMemoTool{Store: store},
	)
}
