package scoring

// recommendationPlans maps each CEFR band to its fixed five-item study
// plan. The fallback band for unknown or empty labels is B1.
var recommendationPlans = map[string][]string{
	"A1": {
		"Practice daily introductions using common phrases.",
		"Listen to slow English podcasts for 10 minutes each day.",
		"Shadow simple sentences to improve pronunciation.",
		"Learn five new vocabulary items focused on daily routines.",
		"Record yourself speaking and compare with the transcript.",
	},
	"A2": {
		"Build themed vocabulary lists (travel, work, study).",
		"Use language exchange apps for short conversations weekly.",
		"Summarize short news stories aloud to improve coherence.",
		"Review basic grammar tenses focusing on past narratives.",
		"Practice answering STAR-format questions with a timer.",
	},
	"B1": {
		"Join an online speaking club twice per week.",
		"Write outlines before speaking to structure responses.",
		"Record and analyze answers to behavioral interview prompts.",
		"Incorporate linking phrases (however, moreover, therefore).",
		"Focus on pronunciation of multi-syllable words using IPA guides.",
	},
	"B2": {
		"Simulate interviews with peers and request targeted feedback.",
		"Refine storytelling using Situation-Task-Action-Result format.",
		"Increase lexical range with topic-specific collocations.",
		"Practice spontaneous follow-up questions to extend dialogue.",
		"Review grammar accuracy focusing on conditionals and modals.",
	},
	"C1": {
		"Engage with advanced podcasts and note key arguments.",
		"Practice persuasive answers using rhetoric techniques.",
		"Analyze native transcripts to emulate intonation patterns.",
		"Experiment with idiomatic expressions in mock interviews.",
		"Lead practice sessions critiquing others to solidify insights.",
	},
	"C2": {
		"Deliver mock presentations with complex data storytelling.",
		"Mentor other learners to reinforce high-level structures.",
		"Study nuanced discourse markers and apply in responses.",
		"Challenge yourself with impromptu debate topics weekly.",
		"Refine pronunciation with phonetic drills on weak forms.",
	},
}

// RecommendationsFor returns the study plan for a CEFR band. Unknown or
// empty bands fall back to the B1 plan. The returned slice is a copy.
func RecommendationsFor(band string) []string {
	plan, ok := recommendationPlans[band]
	if !ok {
		plan = recommendationPlans["B1"]
	}
	return append([]string(nil), plan...)
}
