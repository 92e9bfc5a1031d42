package application

import (
	"fmt"

	"github.com/google/uuid"

	"dictation-pdf/internal/domain"
)

// Sample is a scripted dictation that can be processed without audio.
type Sample struct {
	Key   string
	Title string
	Text  string
}

var Samples = []Sample{
	{
		Key:   "invoice",
		Title: "Invoice Request",
		Text:  "Hello, this is John Smith. I need to create an invoice for services rendered on April 10, 2025. The amount is $1,500 for web development work. Please contact me at 555-123-4567 or john.smith@example.com.",
	},
	{
		Key:   "agreement",
		Title: "Agreement Discussion",
		Text:  "Hi, my name is Sarah Johnson from ABC Company. We'd like to establish a service agreement beginning on May 15, 2025. Please send the contract to our office at 123 Business Street, New York.",
	},
	{
		Key:   "application",
		Title: "Application Submission",
		Text:  "Good day, I'm David Brown. I'm submitting my application for the software developer position. I can be reached at 800-555-7890. I have 5 years of experience in the field.",
	},
}

// SampleInput builds a text input for the sample with the given key.
func SampleInput(key string) (*domain.Input, error) {
	for _, s := range Samples {
		if s.Key == key {
			return &domain.Input{
				SessionID: uuid.NewString(),
				Kind:      domain.InputText,
				Origin:    domain.OriginSample,
				Name:      s.Key,
				Text:      s.Text,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSample, key)
}

// TextInput wraps typed or pasted transcript text.
func TextInput(text string) *domain.Input {
	return &domain.Input{
		SessionID: uuid.NewString(),
		Kind:      domain.InputText,
		Origin:    domain.OriginText,
		Text:      text,
	}
}
