package signals

import "regexp"

// Bilingual detector batteries. Each concern pairs an English and a Bengali
// pattern OR'd into one expression. All patterns run against normalized text
// (see textnorm.Normalize), so matching is lowercase with ASCII digits.
var (
	adminCommandRe = regexp.MustCompile(`^/(id|debug|help|status)`)

	// Past-tense first-person action verbs around spending.
	spentVerbRe = regexp.MustCompile(
		`\b(spent|paid|bought|purchased|ordered|got|took)\b` +
			`|খরচ করেছি|খরচ করলাম|দিয়েছি|দিলাম|কিনেছি|কিনলাম|খেয়েছি|নিয়েছি|অর্ডার করেছি`)

	// Implicit expense shape: an English food word immediately followed by a
	// number ("coffee 100"). Bengali bare mentions ("চা ৫০") stay ambiguous
	// on purpose so the assistant confirms before logging.
	implicitItemRe = regexp.MustCompile(
		`\b(coffee|tea|lunch|dinner|breakfast|snacks?|burger|pizza|rice|biryani|juice|cake)\s+(\d+(?:\.\d{1,2})?)\b`)

	explicitAnalysisRe = regexp.MustCompile(
		`\b(analysis|analyse|analyze)\b|spending analysis|বিশ্লেষণ দাও|বিশ্লেষণ করো|বিশ্লেষণ চাই`)

	analysisTermsRe = regexp.MustCompile(
		`\b(summary|report|insights?|overview|trends?|how much)\b` +
			`|সারাংশ|রিপোর্ট|খরচের হিসাব|কত খরচ`)

	coachingVerbRe = regexp.MustCompile(
		`\b(save|saving|reduce|cut down|lower|budget|advice|improve)\b` +
			`|সাশ্রয়|কমাতে|কমাবো|বাঁচাতে|পরামর্শ|বাজেট`)

	faqTermsRe = regexp.MustCompile(
		`what can you do|how (do|does) (this|it|you) work|\b(features?|pricing|faq)\b|how to (log|use|delete)` +
			`|তুমি কী করতে পারো|কিভাবে কাজ করে|কিভাবে ব্যবহার|ফিচার`)

	greetingRe = regexp.MustCompile(
		`^(hello|hi|hey|yo|thanks|thank you|bye|goodbye|good (morning|afternoon|evening|night)|ok|okay)\b` +
			`|^(হাই|হ্যালো|ধন্যবাদ|সালাম|আসসালামু আলাইকুম|বিদায়|ঠিক আছে)`)

	// Spend-query phrasing that turns a category keyword into a breakdown
	// request ("how much did I spend on food").
	spendQueryRe = regexp.MustCompile(
		`how much (did i|have i|i) spen[dt]|expenses? (on|for)|cost of|spent on` +
			`|কত খরচ (করেছি|হয়েছে)|খরচ কত`)
)
