package ai

import "testing"

func TestCleanTranscription(t *testing.T) {
	cases := map[string]string{
		"  hello world  ":                          "hello world",
		"Here's the transcript: good morning":      "good morning",
		"The transcription is: we agreed":          "we agreed",
		"The audio says: ship on friday":           "ship on friday",
		"I'm unable to transcribe this audio.":     "",
		"Sorry, unable to transcribe":              "",
		"I don't have access to audio\nreal words": "real words",
		"I need the audio file to do that":         "",
		"plain speech with Here's inside":          "plain speech with Here's inside",
	}
	for in, want := range cases {
		if got := CleanTranscription(in); got != want {
			t.Errorf("CleanTranscription(%q) = %q, want %q", in, got, want)
		}
	}
}
