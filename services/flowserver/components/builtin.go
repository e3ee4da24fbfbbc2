// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package components

// builtinComponents is the native component set served even when no custom
// component directory is configured. Descriptors follow the same shape the
// graph definitions reference: a template of typed fields plus metadata.
func builtinComponents() map[string]any {
	return map[string]any{
		"chains": map[string]any{
			"LLMChain": descriptor("LLMChain", "Chain to run queries against LLMs", map[string]any{
				"llm":    field("BaseLanguageModel", true, nil),
				"prompt": field("BasePromptTemplate", true, nil),
			}),
			"ConversationChain": descriptor("ConversationChain", "Chain to carry on a conversation with memory", map[string]any{
				"llm":    field("BaseLanguageModel", true, nil),
				"memory": field("BaseMemory", false, nil),
			}),
		},
		"llms": map[string]any{
			"OpenAI": descriptor("OpenAI", "OpenAI large language model", map[string]any{
				"model_name":  field("str", false, "gpt-3.5-turbo-instruct"),
				"temperature": field("float", false, 0.7),
				"max_tokens":  field("int", false, 256),
			}),
			"ChatOpenAI": descriptor("ChatOpenAI", "OpenAI chat model", map[string]any{
				"model_name":  field("str", false, "gpt-4"),
				"temperature": field("float", false, 0.7),
			}),
		},
		"prompts": map[string]any{
			"PromptTemplate": descriptor("PromptTemplate", "Schema to represent a prompt for an LLM", map[string]any{
				"template":        field("str", true, nil),
				"input_variables": field("list", true, nil),
			}),
		},
		"memories": map[string]any{
			"ConversationBufferMemory": descriptor("ConversationBufferMemory", "Buffer for storing conversation history", map[string]any{
				"memory_key": field("str", false, "history"),
			}),
		},
		"agents": map[string]any{
			"ZeroShotAgent": descriptor("ZeroShotAgent", "Agent that reasons over tool descriptions", map[string]any{
				"llm_chain":     field("LLMChain", true, nil),
				"allowed_tools": field("list", false, nil),
				"handle_errors": field("bool", false, true),
			}),
		},
	}
}

// descriptor builds one component descriptor in the catalog shape.
func descriptor(name, description string, template map[string]any) map[string]any {
	template["_type"] = name
	return map[string]any{
		"display_name": name,
		"description":  description,
		"template":     template,
		"base_classes": []any{name},
	}
}

// field builds one typed template field.
func field(fieldType string, required bool, value any) map[string]any {
	f := map[string]any{
		"type":     fieldType,
		"required": required,
		"show":     true,
	}
	if value != nil {
		f["value"] = value
	}
	return f
}
