package gateway

import "fmt"

const refineSystemInstruction = "You are a world-class prompt engineer for generative AI. " +
	"Your task is to analyze the user's idea and any reference images, then combine them into a single, " +
	"cohesive, detailed prompt suitable for an advanced AI model. " +
	"Also, classify whether the prompt's intent is for an IMAGE or a VIDEO."

const regenerateSystemInstruction = "You are a world-class prompt engineer for generative AI. " +
	"Your task is to analyze the user's idea, any reference images, and a previous prompt you generated. " +
	"Then, create a creative variation of the previous prompt, ensuring it's still suitable for advanced AI models. " +
	"Also, classify whether the new prompt's intent is for an IMAGE or a VIDEO."

const suggestFromImageInstruction = "Describe this image in detail to create a creative and inspiring prompt " +
	"for an AI image/video generator. Focus on objects, atmosphere, style, and potential actions."

func refineUserMessage(idea string) string {
	return fmt.Sprintf("User's idea: %q. Please analyze the provided images and this idea to generate the detailed prompt and classify its intent.", idea)
}

func regenerateUserMessage(originalIdea, previousPrompt string) string {
	return fmt.Sprintf("User's original idea: %q.\nThe previous prompt you generated was: %q.\n"+
		"Please generate a creative variation of that prompt. Do not just rephrase it; "+
		"create a distinct alternative while keeping the core subject and style. "+
		"Analyze any provided images for additional context.", originalIdea, previousPrompt)
}
