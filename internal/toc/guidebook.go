package toc

import "github.com/local/pdfslicer/internal/pages"

// Guidebook is the table of contents of "AI Engineering Guidebook", transcribed by hand
// from printed pages 4-6. Keep marks definitions, comparisons and overviews; code,
// long lists and hands-on walkthroughs are dropped from the summary.
func Guidebook() Plan {
	return Plan{
		Title:    "AI Engineering Guidebook",
		Preamble: pages.Range{Start: 1, End: 6},
		Sections: []Section{
			{Name: "LLMs", Start: 7, Topics: []Topic{
				{"What is an LLM?", 7, 9, true},
				{"Need for LLMs", 10, 11, true},
				{"What makes an LLM 'large'?", 12, 13, true},
				{"How are LLMs built?", 14, 17, true},
				{"How to train LLM from scratch?", 18, 22, false},
				{"How do LLMs work?", 23, 28, true},
				{"7 LLM Generation Parameters", 29, 32, false},
				{"4 LLM Text Generation Strategies", 33, 36, false},
				{"3 Techniques to Train An LLM Using Another LLM", 37, 39, false},
				{"4 Ways to Run LLMs Locally", 40, 43, false},
				{"Transformer vs. Mixture of Experts in LLMs", 44, 48, false},
			}},
			{Name: "Prompt Engineering", Start: 50, Topics: []Topic{
				{"What is Prompt Engineering?", 50, 50, true},
				{"3 prompting techniques for reasoning in LLMs", 51, 57, true},
				{"Verbalized Sampling", 58, 60, false},
				{"JSON prompting for LLMs", 61, 65, false},
			}},
			{Name: "Fine-tuning", Start: 67, Topics: []Topic{
				{"What is Fine-tuning?", 67, 67, true},
				{"Issues with traditional fine-tuning", 68, 69, true},
				{"5 LLM Fine-tuning Techniques", 70, 77, false},
				{"Implementing LoRA From Scratch", 78, 79, false},
				{"How does LoRA work?", 80, 81, false},
				{"Implementation", 82, 85, false},
				{"Generate Your Own LLM Fine-tuning Dataset (IFT)", 86, 91, false},
				{"SFT vs RFT", 92, 93, false},
				{"Build a Reasoning LLM using GRPO", 94, 105, false},
			}},
			{Name: "RAG", Start: 106, Topics: []Topic{
				{"What is RAG?", 106, 106, true},
				{"What are vector databases?", 107, 108, true},
				{"The purpose of vector databases in RAG", 109, 112, false},
				{"Workflow of a RAG system", 113, 117, true},
				{"5 chunking strategies for RAG", 118, 123, false},
				{"Prompting vs. RAG vs. Finetuning?", 124, 125, true},
				{"8 RAG architectures", 126, 127, true},
				{"RAG vs Agentic RAG", 128, 130, true},
				{"Traditional RAG vs HyDE", 131, 133, false},
				{"Full-model Fine-tuning vs. LoRA vs. RAG", 134, 138, false},
				{"RAG vs REFRAG", 139, 140, false},
				{"RAG vs CAG", 141, 142, false},
			}},
			{Name: "Context Engineering", Start: 147, Topics: []Topic{
				{"What is Context Engineering?", 147, 148, true},
				{"Context Engineering for Agents", 149, 156, true},
				{"6 Types of Contexts for AI Agents", 157, 157, false},
				{"Build a Context Engineering workflow", 158, 175, false},
			}},
			{Name: "AI Agents", Start: 177, Topics: []Topic{
				{"What is an AI Agent?", 177, 179, true},
				{"Agent vs LLM vs RAG", 180, 180, true},
				{"Building blocks of AI Agents", 181, 184, true},
				{"Custom tools", 185, 193, false},
				{"Cooperation", 194, 194, true},
				{"Memory Types in AI Agents", 195, 195, true},
				{"Importance of Memory for Agentic Systems", 196, 198, false},
				{"5 Agentic AI Design Patterns", 199, 204, true},
				// Skipping 203-204 here does not remove them: the kept range above wins.
				{"React Pattern details", 203, 204, false},
				{"ReAct Implementation from Scratch", 205, 231, false},
				{"5 Levels of Agentic AI Systems", 232, 234, true},
				{"30 Must-Know Agentic AI Terms", 235, 239, false},
				{"4 Layers of Agentic AI", 240, 241, true},
				{"7 Patterns in Multi-Agent Systems", 242, 254, false},
			}},
			{Name: "MCP", Start: 265, Topics: []Topic{
				{"What is MCP?", 265, 266, true},
				{"Why was MCP created?", 267, 268, true},
				{"MCP Architecture Overview", 269, 273, true},
				{"Tools, Resources and Prompts", 274, 274, true},
				{"Tools, Resources and Prompts Details", 275, 277, false},
				{"API versus MCP", 278, 280, false},
				{"MCP versus Function calling", 281, 281, false},
				{"6 Core MCP Primitives", 282, 285, false},
				{"Creating MCP Agents", 286, 304, false},
			}},
			{Name: "LLM Optimization", Start: 305, Topics: []Topic{
				{"Why do we need optimization?", 305, 307, true},
				{"Model Compression", 308, 317, false},
				{"Regular ML Inference vs. LLM Inference", 318, 325, false},
				{"KV Caching in LLMs", 326, 330, false},
			}},
			{Name: "LLM Evaluation", Start: 332, Topics: []Topic{
				{"G-eval", 332, 334, false},
				{"LLM Arena-as-a-Judge", 335, 336, false},
				{"Multi-turn Evals for LLM Apps", 337, 357, false},
			}},
			{Name: "LLM Deployment", Start: 359, Topics: []Topic{
				{"Why is LLM Deployment Different?", 359, 360, false},
				{"vLLM: An LLM Inference Engine", 361, 364, false},
				{"LitServe", 365, 369, false},
			}},
			{Name: "LLM Observability", Start: 371, Topics: []Topic{
				{"Evaluation vs Observability", 371, 372, false},
				{"Implementation", 373, 384, false},
			}},
		},
	}
}
