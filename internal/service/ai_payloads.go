package service

// 模型输出的结构化格式，解码后由 validator 校验，不合格时返回兜底内容

type StudySuggestion struct {
	Title            string `json:"title" validate:"required,max=200"`
	Detail           string `json:"detail" validate:"required"`
	Priority         string `json:"priority" validate:"required,oneof=high medium low"`
	Subject          string `json:"subject"`
	EstimatedMinutes int    `json:"estimated_minutes" validate:"gte=0,lte=600"`
}

type StudySuggestions struct {
	Summary     string            `json:"summary" validate:"required"`
	Suggestions []StudySuggestion `json:"suggestions" validate:"required,min=1,max=10,dive"`
	Fallback    bool              `json:"fallback"`
	Cached      bool              `json:"cached"`
}

type PracticeQuestion struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"len=4,dive,required"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0,lte=3"`
	Explanation  string   `json:"explanation" validate:"required"`
	Difficulty   string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type PracticeQuestionSet struct {
	Subject   string             `json:"subject" validate:"required"`
	Questions []PracticeQuestion `json:"questions" validate:"required,min=1,max=20,dive"`
	Fallback  bool               `json:"fallback"`
}

// EssayDimensions 各维度 0-10 分
type EssayDimensions struct {
	Structure  float64 `json:"structure" validate:"gte=0,lte=10"`
	Content    float64 `json:"content" validate:"gte=0,lte=10"`
	Language   float64 `json:"language" validate:"gte=0,lte=10"`
	Examples   float64 `json:"examples" validate:"gte=0,lte=10"`
	Conclusion float64 `json:"conclusion" validate:"gte=0,lte=10"`
}

// EssayScore 总分按 125 分制
type EssayScore struct {
	OverallScore float64         `json:"overall_score" validate:"gte=0,lte=125"`
	Dimensions   EssayDimensions `json:"dimensions"`
	Strengths    []string        `json:"strengths" validate:"required,min=1,dive,required"`
	Improvements []string        `json:"improvements" validate:"required,min=1,dive,required"`
	Feedback     string          `json:"feedback" validate:"required"`
	WordCount    int             `json:"word_count"`
	Fallback     bool            `json:"fallback"`
}

type ChatReply struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

type RevisionNotes struct {
	Topic     string   `json:"topic" validate:"required"`
	Summary   string   `json:"summary" validate:"required"`
	KeyPoints []string `json:"key_points" validate:"required,min=3,dive,required"`
	Keywords  []string `json:"keywords"`
	Fallback  bool     `json:"fallback"`
}

type QuestionRequest struct {
	Subject    string `json:"subject" binding:"required,max=100"`
	Count      int    `json:"count" binding:"omitempty,gte=1,lte=20"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

type EssayRequest struct {
	Topic   string `json:"topic" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

type NotesRequest struct {
	Topic   string `json:"topic" binding:"required,max=255"`
	Subject string `json:"subject" binding:"max=100"`
}

func fallbackSuggestions() StudySuggestions {
	return StudySuggestions{
		Summary: "Personalised suggestions are unavailable right now. Here is a balanced default plan.",
		Suggestions: []StudySuggestion{
			{Title: "Revise the weakest GS subject", Detail: "Spend the first study block on the subject with the lowest completion and finish one pending lecture.", Priority: "high", EstimatedMinutes: 120},
			{Title: "Timed prelims practice", Detail: "Solve 50 previous-year MCQs in 60 minutes and review every wrong answer.", Priority: "high", EstimatedMinutes: 90},
			{Title: "Answer writing", Detail: "Write two mains answers of 150 words and compare them against a model answer.", Priority: "medium", EstimatedMinutes: 60},
			{Title: "Current affairs", Detail: "Read the daily newspaper and make short notes linked to the syllabus.", Priority: "medium", EstimatedMinutes: 45},
		},
		Fallback: true,
	}
}

var fallbackQuestionBank = []PracticeQuestion{
	{
		Question:     "Which Article of the Constitution of India deals with the Right to Constitutional Remedies?",
		Options:      []string{"Article 19", "Article 21", "Article 32", "Article 44"},
		CorrectIndex: 2,
		Explanation:  "Article 32 allows a person to move the Supreme Court for enforcement of Fundamental Rights.",
		Difficulty:   "easy",
	},
	{
		Question:     "The concept of Directive Principles of State Policy was borrowed from the constitution of which country?",
		Options:      []string{"Ireland", "United States", "Canada", "Australia"},
		CorrectIndex: 0,
		Explanation:  "The Directive Principles were inspired by the Irish Constitution of 1937.",
		Difficulty:   "easy",
	},
	{
		Question:     "Which body recommends the distribution of tax revenues between the Union and the States?",
		Options:      []string{"NITI Aayog", "Finance Commission", "GST Council", "Inter-State Council"},
		CorrectIndex: 1,
		Explanation:  "The Finance Commission under Article 280 recommends the vertical and horizontal distribution of taxes.",
		Difficulty:   "medium",
	},
	{
		Question:     "The Tropic of Cancer does NOT pass through which of the following states?",
		Options:      []string{"Gujarat", "Odisha", "Tripura", "Jharkhand"},
		CorrectIndex: 1,
		Explanation:  "The Tropic of Cancer passes through eight states; Odisha is not one of them.",
		Difficulty:   "medium",
	},
	{
		Question:     "Who among the following presided over the Lahore session of the Indian National Congress in 1929?",
		Options:      []string{"Motilal Nehru", "Jawaharlal Nehru", "Subhas Chandra Bose", "Sardar Patel"},
		CorrectIndex: 1,
		Explanation:  "Jawaharlal Nehru presided over the 1929 Lahore session where Purna Swaraj was declared.",
		Difficulty:   "easy",
	},
}

func fallbackQuestions(subject string, count int) PracticeQuestionSet {
	if count <= 0 || count > len(fallbackQuestionBank) {
		count = len(fallbackQuestionBank)
	}
	questions := make([]PracticeQuestion, count)
	copy(questions, fallbackQuestionBank[:count])
	return PracticeQuestionSet{Subject: subject, Questions: questions, Fallback: true}
}

func fallbackEssayScore(wordCount int) EssayScore {
	return EssayScore{
		OverallScore: 60,
		Dimensions:   EssayDimensions{Structure: 5, Content: 5, Language: 5, Examples: 5, Conclusion: 5},
		Strengths:    []string{"The essay addresses the topic."},
		Improvements: []string{
			"Add a clear introduction that frames the topic.",
			"Support each argument with an example, data point or case study.",
			"Close with a balanced, forward-looking conclusion.",
		},
		Feedback:  "Automatic evaluation is unavailable right now. A default score has been assigned.",
		WordCount: wordCount,
		Fallback:  true,
	}
}

const fallbackChatReply = "The study assistant is unavailable right now. Please try again in a few minutes."

func fallbackNotes(topic string) RevisionNotes {
	return RevisionNotes{
		Topic:   topic,
		Summary: "Notes could not be generated right now. Use this outline to build your own.",
		KeyPoints: []string{
			"Definition and constitutional or historical background",
			"Key provisions, committees or judgements",
			"Current relevance and recent developments",
			"Way forward and critical analysis",
		},
		Fallback: true,
	}
}
