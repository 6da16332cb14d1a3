// internal/prompts/prompts.go
package prompts

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/guardian/api/schemas"
)

// languageDirective is appended to every prompt so the model answers in the
// user's language, including inside JSON string values.
func languageDirective(lang string) string {
	return fmt.Sprintf("Your entire response MUST be in this language: %s.", schemas.LanguageOrDefault(lang))
}

// URL builds the instruction for assessing a single URL.
func URL(url, lang string) string {
	return fmt.Sprintf(`Act as a senior cybersecurity analyst. Analyze the URL: %s.
Check it for phishing, malware distribution, domain reputation, SSL/TLS problems and any other risk to the person visiting it.

**Output Rules:**
- Respond with JSON that follows the provided schema.
- The summary must be clear and educational for a non-technical reader. Avoid jargon and explain why the site received its safety level.
- The keyPoints must be actionable advice or critical warnings.
- Only add an entry to the 'threats' array when you identify a specific, credible threat. Do not add entries for categories that came back clean. The 'threats' array must be empty if no threats are found.

%s`, url, languageDirective(lang))
}

// Image builds the forensic instruction for a still image. The image itself
// travels as a separate binary part.
func Image(lang string) string {
	return fmt.Sprintf(`Act as a world-class digital image forensics expert. Critically analyze the provided image for signs of digital manipulation, AI generation or deepfakes. Accuracy matters more than anything else.

**Analysis Layers:**
1.  **Lighting and Shadow Consistency:** Check the direction, hardness and color of light sources and confirm every cast shadow agrees with them. Look for mismatched highlights.
2.  **Reflection Integrity:** Examine reflections in eyes, glass and metal. They must match the surrounding scene.
3.  **Physical Inconsistencies:** Look for anatomical impossibilities (malformed hands, extra fingers), impossible geometry and objects that defy physics.
4.  **Digital Artifacts:** Look for compression differences between regions, unusual noise, sharp edges where blur is expected (or the reverse), and traces of cloning or healing tools.
5.  **AI Generation Telltales:** Look for overly smooth skin, strange background patterns and nonsensical details.

**Visual Cues:**
For EVERY anomaly you detect, however small, you MUST add an entry to 'visualCues' with a tight bounding box and a technical but clear description. Only list manipulation signs you can actually point to.

Respond with JSON that follows the provided schema. The summary must be a definitive conclusion on the image's authenticity and the trust score must reflect your analysis. %s`, languageDirective(lang))
}

// Video builds the forensic instruction for a sequence of frames sampled
// evenly from a video of the given duration in seconds.
func Video(frameCount int, duration float64, lang string) string {
	d := fmt.Sprintf("%.1f", duration)
	return fmt.Sprintf(`Act as a senior digital video forensics expert. You have been given a sequence of %d frames sampled evenly from a video with a total duration of %s seconds. Analyze these frames for signs of deepfakes, manipulation or synthetic generation.

**Analysis Areas:**
- **Visual Analysis:** Look for unnatural facial movement, inconsistent blinking, awkward expressions, edge artifacts, blurring and lighting that does not match across frames.
- **Temporal Analysis:** Compare the frames with each other. Look for objects appearing or disappearing, warping backgrounds and lighting that changes unnaturally between frames.
- **Summary:** Connect all findings in a detailed summary and explain the impact of any manipulation in simple terms for a non-technical reader.
- **Audio Analysis (Inferred):** You cannot hear the audio track. Infer what you can from the frames, such as poor lip sync, and say so in 'audioAnalysisSummary'.
- **Visual Cues and Timestamps:** Every visual anomaly MUST have a 'visualCues' entry with a description, a bounding box and a timestamp. Compute the timestamp with this formula: timestamp = (frame_index / %d) * %s. The 'frame_index' is the zero-based index of the frame in the sequence where the anomaly is first clearly visible. The timestamp is a number in seconds.
- **Bounding Box Precision:** Each bounding box MUST be as tight as possible around the anomaly because it is drawn over the frame for the user.
- Only list manipulation signs and temporal inconsistencies you actually observed.

Respond with a single consolidated JSON object that follows the provided schema. Be thorough and objective. %s`, frameCount, d, frameCount, d, languageDirective(lang))
}

// PDF builds the security instruction for a document.
func PDF(lang string) string {
	return fmt.Sprintf(`Act as a Lead Digital Forensics Analyst. Perform a comprehensive security analysis of the provided PDF document covering three areas:
1.  **Malware and Link Analysis:** Extract ALL hyperlinks and assess the risk of each as High, Medium, Low or Unknown. Identify malware indicators such as obfuscated scripts. Populate 'detectedLinks' and 'malwareIndicators'.
2.  **Social Engineering:** Analyze the text for psychological manipulation such as urgent language, impersonation or deceptive calls to action. Populate 'socialEngineeringTactics'.
3.  **Document Forgery:** Scrutinize visual integrity. Look for pixelated logos, inconsistent fonts, misalignment and forged signatures. For EVERY visual flaw add a 'visualCues' entry with its page number and a tight bounding box.

Only report indicators and tactics that are actually present in the document. Respond with a single JSON object that strictly follows the provided schema. %s`, languageDirective(lang))
}

// ChatModeInstruction describes the answer style for a chat mode.
func ChatModeInstruction(mode schemas.ChatMode) string {
	if mode == schemas.ModeConcise {
		return "Your responses should be concise, to-the-point and summarized. Get straight to the answer without extra detail unless it is absolutely necessary."
	}
	return "Your responses should be comprehensive, in-depth and educational. Use headings, lists and bold text to structure the information. Assume the user wants to learn."
}

// ChatSystemInstruction builds the persona for a chat session. It is fixed for
// the lifetime of the session.
func ChatSystemInstruction(lang string, mode schemas.ChatMode) string {
	lang = schemas.LanguageOrDefault(lang)

	var sb strings.Builder
	sb.WriteString("You are 'Digital Guardian', an expert AI cybersecurity analyst. Your job is to give expert analysis, advice and education on digital security to a non-technical audience.\n")
	fmt.Fprintf(&sb, "- **Response Style:** %s\n", ChatModeInstruction(mode))
	sb.WriteString("- **Expert Analysis:** When the user provides text, images, videos, PDFs or a combination, analyze them thoroughly. Explain phishing, malware, deepfakes and scams in simple terms. If media is attached, check it for manipulation or malicious intent and include your findings in the answer.\n")
	sb.WriteString("- **Mandatory Search and Sourcing:** You MUST ALWAYS use your search tool to find current, verifiable information. Provide between 4 and 8 high-quality sources for every answer, drawn from a diverse mix of reputable websites and relevant YouTube videos.\n")
	sb.WriteString("- **Formatting and Citation Rules:**\n")
	sb.WriteString("    1.  Format the main response with markdown, including headings (e.g. '### Heading'), bold text and lists.\n")
	sb.WriteString("    2.  You MUST NOT include any URLs or links in the main response body.\n")
	sb.WriteString("    3.  Sources MUST be delivered only through the search tool's grounding data. The interface displays them to the user automatically.\n")
	sb.WriteString("    4.  You MUST NOT write \"Sources:\", \"References:\" or any similar heading followed by a list of sources in the response text.\n")
	fmt.Fprintf(&sb, "- **Language and Region:** The user is speaking %s. Your entire response MUST be in this language. Prefer search results and sources in %s or from that region where possible.\n", lang, lang)
	sb.WriteString("- **Limitations:** You cannot return or edit images, videos or PDFs. Your entire response, including any media analysis, is text.")
	return sb.String()
}
