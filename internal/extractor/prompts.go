package extractor

import (
	"fmt"
	"strings"
	"time"

	"meeting-assistant-go/internal/types"
)

const (
	summarySystem  = "You analyze meeting transcripts and answer with a single JSON object."
	tasksSystem    = "You extract action items from meeting transcripts and answer with a single JSON object. Dates use the YYYY-MM-DD format."
	classifySystem = "You classify meeting transcripts. Answer with one word and nothing else."
	commandSystem  = "You help a user work with the notes of one recorded meeting."
)

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Read the meeting transcript below and produce:
- "summary": a concise summary of two or three sentences
- "key_points": the main points discussed, as a list of short strings

Transcript:
"""%s"""

Return ONLY a JSON object of this shape:
{"summary": "...", "key_points": ["...", "..."]}`, transcript)
}

func tasksPrompt(transcript string, today time.Time) string {
	return fmt.Sprintf(`Today is %s, %s.

List every action item or task mentioned in the meeting transcript below.
For each one give:
- "task": what has to be done
- "deadline": the due date as YYYY-MM-DD, or null when none was mentioned.
  Resolve relative dates such as "tomorrow" or "next Friday" against today's date.

Transcript:
"""%s"""

Return ONLY a JSON object of this shape:
{"tasks": [{"task": "...", "deadline": "2026-02-14"}, {"task": "...", "deadline": null}]}
If there are no action items, return {"tasks": []}.`, today.Weekday(), today.Format("2006-01-02"), transcript)
}

func sentimentPrompt(transcript string) string {
	names := make([]string, len(types.Sentiments))
	for i, s := range types.Sentiments {
		names[i] = string(s)
	}
	return fmt.Sprintf(`Classify the overall tone of this meeting as exactly one of: %s.

Transcript:
"""%s"""

Answer with the single word only.`, strings.Join(names, ", "), transcript)
}

func languagePrompt(transcript string) string {
	return fmt.Sprintf(`Which language is this meeting transcript written in?
Answer with the language name in English (for example "English", "Spanish", "Hindi") and nothing else.

Transcript:
"""%s"""`, transcript)
}

func translatePrompt(text, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following text into %s.
Return only the translation, with no notes or quotation marks.

Text:
"""%s"""`, targetLanguage, text)
}

func commandPrompt(command, transcript string) string {
	return fmt.Sprintf(`Meeting transcript:
"""%s"""

User command: %s

Respond helpfully and concisely, using only what the transcript says.`, transcript, command)
}
