package core

import "github.com/jo-hoe/goimagine/internal/backend/history"

func historyImage(prompt string) history.NewImage {
	return history.NewImage{
		Prompt:     prompt,
		ImageURL:   "https://img.example/" + prompt,
		Dimensions: "1024x1024",
		Style:      "realistic",
	}
}
