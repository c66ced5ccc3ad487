package agentx

import (
	"fmt"

	"github.com/Abraxas-365/skycast/pkg/sentinelx"
)

// stage1Instructions tells the model how to request a weather lookup. The
// marker literals come from the scanner's marker set so the instructions can
// never drift from what the scanner detects.
func stage1Instructions(markers sentinelx.MarkerSet) string {
	return fmt.Sprintf(`You are Skycast, a friendly weather assistant.

When the user asks about current weather conditions, request a lookup by
emitting exactly this, with nothing inside the markers except the JSON object:

%s{"location": "<city, region>", "unit": "celsius" or "fahrenheit"}%s

Rules:
- "location" is required. "unit" is optional.
- Emit at most one lookup request per reply.
- Do not guess or invent weather data; if you need current conditions, use the
  lookup request.
- For questions that need no weather data, just answer normally and do not
  emit the markers.`, markers.CallOpen, markers.CallClose)
}

// stage2Instructions tells the model how to phrase the final answer from a
// completed lookup. The result arrives bracketed so the model can tell data
// from conversation.
func stage2Instructions(markers sentinelx.MarkerSet) string {
	return fmt.Sprintf(`You are Skycast, a friendly weather assistant.

The user's question and the weather lookup result are below. The result is the
JSON object between %s and %s. Answer the question conversationally using that
data. If the result contains an "error" field, the lookup failed; explain the
problem to the user in plain language and do not invent weather data.

Do not repeat the markers or the raw JSON in your answer.`,
		markers.ResultOpen, markers.ResultClose)
}

// stage2UserMessage bundles the original request with the wrapped lookup
// result in a single user turn.
func stage2UserMessage(markers sentinelx.MarkerSet, userInput, serializedResult string) string {
	return fmt.Sprintf("%s\n\n%s", userInput, markers.WrapResult(serializedResult))
}
