package quiz

import (
	"errors"
	"slices"
)

const (
	TopicBusinessActivity = "Unit 1 - Business Activity"
	TopicMarketing        = "Unit 2 - Marketing"
	TopicPeople           = "Unit 3 - People"
	TopicOperations       = "Unit 4 - Operations"
	TopicFinance          = "Unit 5 - Finance"
	TopicExternal         = "Unit 6 - External influences"
	TopicGeneral          = "General revision"
)

// ErrUnknownTopic is returned when a topic is not one of Topics.
var ErrUnknownTopic = errors.New("unknown topic")

// Topics lists the selectable revision topics in menu order.
var Topics = []string{
	TopicBusinessActivity,
	TopicMarketing,
	TopicPeople,
	TopicOperations,
	TopicFinance,
	TopicExternal,
	TopicGeneral,
}

// DefaultTopic is selected for a new session.
const DefaultTopic = TopicBusinessActivity

// ValidTopic reports whether topic is one of Topics.
func ValidTopic(topic string) bool {
	return slices.Contains(Topics, topic)
}

// Bank maps a topic to its questions.
type Bank map[string][]Question

// For returns the questions of topic, falling back to general revision.
func (b Bank) For(topic string) []Question {
	if qs, ok := b[topic]; ok && len(qs) > 0 {
		return qs
	}
	return b[TopicGeneral]
}

// DefaultBank is the built-in OCR GCSE Business question bank.
func DefaultBank() Bank {
	return Bank{
		TopicBusinessActivity: {
			{
				Text:            "Define enterprise and give one reason why entrepreneurs start a business.",
				ReferenceAnswer: "Enterprise refers to taking initiative to set up and manage a business. Reasons include spotting a gap in the market or wanting independence.",
			},
			{
				Text:            "Explain one advantage of a franchise model for a new entrepreneur.",
				ReferenceAnswer: "Franchises offer an established brand and support which reduces risk compared to starting alone.",
			},
		},
		TopicMarketing: {
			{
				Text:            "State two methods a business can use for market research and explain one benefit of using them together.",
				ReferenceAnswer: "Primary research such as surveys and secondary data like industry reports can be combined to validate findings.",
			},
			{
				Text:            "What is market segmentation and how could a trainer brand segment by geography?",
				ReferenceAnswer: "Segmentation splits the market into groups; a trainer brand could target urban regions differently to rural areas.",
			},
		},
		TopicPeople: {
			{
				Text:            "Give two reasons why a business appraises staff performance annually.",
				ReferenceAnswer: "Appraisals identify training needs and set objectives which can improve motivation.",
			},
			{
				Text:            "Explain one financial and one non financial method of motivation.",
				ReferenceAnswer: "A bonus rewards output while job rotation keeps roles varied and engaging.",
			},
		},
		TopicOperations: {
			{
				Text:            "Describe one benefit of just in time stock control for a retailer.",
				ReferenceAnswer: "It reduces storage costs because items arrive when needed.",
			},
			{
				Text:            "How can quality assurance support brand reputation?",
				ReferenceAnswer: "Checking processes prevents faults reaching customers, which protects trust.",
			},
		},
		TopicFinance: {
			{
				Text:            "Calculate profit given revenue of £12 000 and costs of £8 500.",
				ReferenceAnswer: "Profit is £3 500 because profit equals revenue minus costs.",
			},
			{
				Text:            "Explain one advantage of retained profit as a source of finance.",
				ReferenceAnswer: "It avoids interest charges so the business keeps control.",
			},
		},
		TopicExternal: {
			{
				Text:            "Give one way a rise in interest rates may affect a small business loan repayment.",
				ReferenceAnswer: "Higher rates increase repayment amounts which can reduce cash flow.",
			},
			{
				Text:            "How can environmental legislation influence business costs?",
				ReferenceAnswer: "Firms may need cleaner equipment which increases spending in the short term.",
			},
		},
		TopicGeneral: {
			{
				Text:            "State two aims a start up might have in its first year.",
				ReferenceAnswer: "Typical aims include survival and building market share.",
			},
			{
				Text:            "Give one benefit of social media promotion for a local business.",
				ReferenceAnswer: "It is low cost and can target nearby customers quickly.",
			},
		},
	}
}

var examQuestions = map[string]string{
	TopicBusinessActivity: "Discuss how setting SMART objectives supports a start up in its first year (6 marks).",
	TopicMarketing:        "Analyse whether a sportswear brand should use digital promotion for a new trainer launch (8 marks).",
	TopicPeople:           "Evaluate the impact of flexible working on staff motivation in a small business (8 marks).",
	TopicOperations:       "Assess the benefits and drawbacks of using just in time stock control for a manufacturer (10 marks).",
	TopicFinance:          "Calculate and comment on the break even point given fixed costs and contribution (10 marks).",
	TopicExternal:         "Evaluate how a change in exchange rates could affect an exporter (12 marks).",
	TopicGeneral:          "Discuss one ethical issue a business might face and how it could respond (8 marks).",
}

// ExamQuestion returns an exam style practice question for topic.
func ExamQuestion(topic string) string {
	if q, ok := examQuestions[topic]; ok {
		return q
	}
	return examQuestions[TopicGeneral]
}
