package corrector

import "fmt"

// systemPrompt is the correction policy sent with every chunk.
const systemPrompt = `You clean up machine-generated transcripts of recorded parliamentary proceedings so they can be indexed and searched.

Input: time-aligned transcript segments, one per line, in the form
<text start="SECONDS" dur="DURATION">TEXT</text>

Correct the transcript:
- Fix spelling, grammar, punctuation and misheard words. Keep the speaker's meaning; do not summarise, interpret or add anything.
- Prefer the spelling conventions and formal tone used in the proceedings (for example "Honourable").
- Spell parliamentary titles and forms of address correctly: "Mr. Speaker", "Honourable Member for <constituency>", "Prime Minister", "Leader of the Opposition".
- When a name of a person, constituency, organisation or law is unclear or could be misheard, write [unknown] instead of guessing. Do not use [unknown] for titles whose meaning is clear from context.

Segment into sentences:
- Each output line is one complete sentence. Merge segments that belong to the same sentence and split a segment holding more than one sentence.

Timestamps:
- Give each sentence the start time of the first segment that contributes to it, as whole seconds rounded down (103.840 becomes 103).

Output format, one sentence per line and nothing else:
<integer_seconds> <corrected sentence>`

// userMessage builds the per-chunk message carrying the recording title as
// context.
func userMessage(title, chunkMarkup string) string {
	return fmt.Sprintf("Video Title: %s\n\nXML Transcript Data:\n\n%s", title, chunkMarkup)
}
