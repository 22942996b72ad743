package pipeline

import "fmt"

// analysisPrompt wraps the transcript in the reflective-assistant prompt.
// The model answers in Markdown with a fixed section layout so the report is
// directly usable as the downloadable artifact.
func analysisPrompt(transcript string) string {
	return fmt.Sprintf(`Analyze the following transcription of a personal voice note, which represents the user's stream of consciousness. Act as a reflective and helpful assistant. Structure your analysis in Markdown with the following sections:

1.  **Original Transcription:** Include the full transcription provided below.
2.  **Summary of Main Points:** Identify and list the central themes or ideas discussed.
3.  **Problems or Challenges:** List any problems, concerns or difficulties the user expressed.
4.  **Connections and Possible Causes:** Explore possible links between the different points or problems mentioned. Where possible, suggest underlying causes for the identified challenges (present these as hypotheses, not certainties).
5.  **Actionable Next Steps:** Suggest 3-5 concrete, practical steps the user could take to address the challenges, explore the ideas or gain clarity. Focus on small, manageable actions.

Format the whole response in Markdown. Use headers (##) for each section and bulleted (*) or numbered (1.) lists as appropriate. Keep an empathetic, constructive tone.

**Transcription to analyze:**
---
%s
---

**Formatted Markdown analysis:**`, transcript)
}
