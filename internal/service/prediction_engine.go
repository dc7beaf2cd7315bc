package service

import (
	"civilprep_backend/internal/model"
	"civilprep_backend/internal/util"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

const (
	RecentAttemptWindow      = 100
	TargetSecondsPerQuestion = 72.0
	ConsistencyWindowDays    = 14
	MinConsistencyDays       = 7
	MoodWindow               = 14
	TestTrendWindow          = 5

	CandidatePopulation = 1000000
	PrelimsMax          = 200.0
	MainsMax            = 1750.0
	InterviewMax        = 275.0
	PrelimsCutoff       = 95.0

	revisionBonusPerRound = 2.0
	revisionBonusCap      = 10.0
	defaultMoodScore      = 60.0
	defaultSpeedScore     = 50.0
)

// readinessWeights 各分项在就绪度中的权重，合计为 1
var readinessWeights = []struct {
	name   string
	weight float64
	value  func(m *model.Metrics) float64
}{
	{"completion", 0.30, func(m *model.Metrics) float64 { return m.Completion }},
	{"accuracy", 0.25, func(m *model.Metrics) float64 { return m.Accuracy }},
	{"consistency", 0.15, func(m *model.Metrics) float64 { return m.Consistency }},
	{"speed", 0.10, func(m *model.Metrics) float64 { return m.Speed }},
	{"mood", 0.05, func(m *model.Metrics) float64 { return m.Mood }},
	{"optional", 0.05, func(m *model.Metrics) float64 { return m.Optional }},
	{"current_affairs", 0.05, func(m *model.Metrics) float64 { return m.CurrentAffairs }},
	{"essay", 0.05, func(m *model.Metrics) float64 { return m.Essay }},
}

// rankBand 总分区间到排名区间的映射，分数越高排名越靠前
type rankBand struct {
	minScore  float64
	maxScore  float64
	bestRank  int
	worstRank int
}

var rankBands = []rankBand{
	{1000, MainsMax + InterviewMax, 1, 100},
	{900, 1000, 100, 1000},
	{800, 900, 1000, 5000},
	{650, 800, 5000, 50000},
	{400, 650, 50000, 300000},
	{0, 400, 300000, CandidatePopulation},
}

// PredictionInput 预测所需的原始记录
type PredictionInput struct {
	Subjects       []model.SubjectProgress
	Attempts       []model.QuestionAttempt // 最新的在前
	Goals          []model.DailyGoal
	Sessions       []model.StudySession
	Tests          []model.TestRecord // 按日期升序
	Moods          []model.MoodEntry  // 最新的在前
	Optional       []model.OptionalSection
	CurrentAffairs *model.CurrentAffairsProgress
	Essay          *model.EssayProgress
	Today          time.Time
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WeightedSubjectCompletion 讲座 60% + 练习 40%，复习每轮加 2 分，最多加 10 分
func WeightedSubjectCompletion(s *model.SubjectProgress) float64 {
	base := model.LectureWeight*s.LecturePercent() + model.PracticeWeight*s.DPPPercent()
	bonus := math.Min(float64(s.RevisionCount)*revisionBonusPerRound, revisionBonusCap)
	return clamp(base+bonus, 0, 100)
}

// Accuracy 最近 100 次作答的正确率；没有作答时用模考平均得分率
func Accuracy(attempts []model.QuestionAttempt, tests []model.TestRecord) float64 {
	if len(attempts) > RecentAttemptWindow {
		attempts = attempts[:RecentAttemptWindow]
	}
	if len(attempts) == 0 {
		return averageTestPercent(tests)
	}

	correct := 0
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(attempts)) * 100
}

// SpeedScore 平均每题用时超过 72 秒时线性扣分，快于目标时线性加分
func SpeedScore(attempts []model.QuestionAttempt) float64 {
	if len(attempts) > RecentAttemptWindow {
		attempts = attempts[:RecentAttemptWindow]
	}

	total, n := 0, 0
	for _, a := range attempts {
		if a.TimeTakenSeconds > 0 {
			total += a.TimeTakenSeconds
			n++
		}
	}
	if n == 0 {
		return defaultSpeedScore
	}

	avg := float64(total) / float64(n)
	return clamp(80-(avg-TargetSecondsPerQuestion)*0.8, 0, 100)
}

// DailyHours 截至 today 的最近 days 天，每天的学习小时数（无记录的天为 0）
func DailyHours(goals []model.DailyGoal, sessions []model.StudySession, today time.Time, days int) []float64 {
	byDate := make(map[string]float64)
	for _, g := range goals {
		byDate[g.Date] += g.HoursStudied
	}
	for _, s := range sessions {
		if s.EndedAt == nil {
			continue
		}
		byDate[s.StartedAt.Format(util.DateFormat)] += float64(s.DurationMinutes) / 60
	}

	hours := make([]float64, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i)).Format(util.DateFormat)
		hours[i] = byDate[date]
	}
	return hours
}

// Consistency 由每日学习时长的变异系数得到：越平稳分数越高
func Consistency(hours []float64) float64 {
	if len(hours) < MinConsistencyDays {
		return 0
	}

	mean := 0.0
	for _, h := range hours {
		mean += h
	}
	mean /= float64(len(hours))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, h := range hours {
		variance += (h - mean) * (h - mean)
	}
	variance /= float64(len(hours))

	cv := math.Sqrt(variance) / mean
	return clamp((1-cv/2)*100, 0, 100)
}

// MoodScore 最近 14 条心情的平均分
func MoodScore(moods []model.MoodEntry) float64 {
	if len(moods) > MoodWindow {
		moods = moods[:MoodWindow]
	}
	if len(moods) == 0 {
		return defaultMoodScore
	}

	total := 0.0
	for _, m := range moods {
		total += m.Mood.Score()
	}
	return total / float64(len(moods))
}

// TestTrend 最近 5 次模考得分率的最小二乘斜率（每次变化的百分点）
func TestTrend(tests []model.TestRecord) float64 {
	if len(tests) > TestTrendWindow {
		tests = tests[len(tests)-TestTrendWindow:]
	}
	n := float64(len(tests))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, t := range tests {
		x := float64(i)
		y := math.Min(t.Percentage(), 100)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func averageTestPercent(tests []model.TestRecord) float64 {
	if len(tests) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range tests {
		total += math.Min(t.Percentage(), 100)
	}
	return total / float64(len(tests))
}

func optionalCompletion(sections []model.OptionalSection) float64 {
	total, completed := 0, 0
	for _, s := range sections {
		total += s.TotalItems
		completed += s.CompletedItems
	}
	return model.Percent(completed, total)
}

// Aggregate 把原始记录聚合成指标。纯函数，相同输入得到相同结果
func Aggregate(in *PredictionInput) model.Metrics {
	m := model.Metrics{
		Subjects: make([]model.SubjectMetric, 0, len(in.Subjects)),
	}

	if len(in.Subjects) > 0 {
		total := 0.0
		for i := range in.Subjects {
			s := &in.Subjects[i]
			c := WeightedSubjectCompletion(s)
			total += c
			m.Subjects = append(m.Subjects, model.SubjectMetric{
				Subject:    s.SubjectName,
				Category:   s.Category,
				Completion: model.Round2(c),
				Revisions:  s.RevisionCount,
				Questions:  s.QuestionsCount,
			})
		}
		m.Completion = total / float64(len(in.Subjects))
	}

	m.AttemptsSampled = int(math.Min(float64(len(in.Attempts)), RecentAttemptWindow))
	m.Accuracy = Accuracy(in.Attempts, in.Tests)
	m.Speed = SpeedScore(in.Attempts)

	hours := DailyHours(in.Goals, in.Sessions, in.Today, ConsistencyWindowDays)
	m.Consistency = Consistency(hours)
	for _, h := range hours[len(hours)-7:] {
		m.WeeklyHours += h
	}

	m.Mood = MoodScore(in.Moods)
	m.TestAverage = averageTestPercent(in.Tests)
	m.TestTrend = TestTrend(in.Tests)
	m.Optional = optionalCompletion(in.Optional)
	if in.CurrentAffairs != nil {
		m.CurrentAffairs = in.CurrentAffairs.Percentage()
	}
	if in.Essay != nil {
		m.Essay = in.Essay.Percentage()
	}

	roundMetrics(&m)
	return m
}

func roundMetrics(m *model.Metrics) {
	m.Completion = model.Round2(m.Completion)
	m.Accuracy = model.Round2(m.Accuracy)
	m.Speed = model.Round2(m.Speed)
	m.Consistency = model.Round2(m.Consistency)
	m.Mood = model.Round2(m.Mood)
	m.TestAverage = model.Round2(m.TestAverage)
	m.TestTrend = model.Round2(m.TestTrend)
	m.Optional = model.Round2(m.Optional)
	m.CurrentAffairs = model.Round2(m.CurrentAffairs)
	m.Essay = model.Round2(m.Essay)
	m.WeeklyHours = model.Round2(m.WeeklyHours)
}

// ReadinessScore 固定权重线性组合，模考趋势最多 ±5 分，结果截断到 [0,100]
func ReadinessScore(m model.Metrics) model.Readiness {
	components := make(map[string]float64, len(readinessWeights)+1)
	score := 0.0
	for _, w := range readinessWeights {
		c := w.weight * w.value(&m)
		components[w.name] = model.Round2(c)
		score += c
	}

	trend := clamp(m.TestTrend*0.5, -5, 5)
	components["test_trend"] = model.Round2(trend)
	score += trend

	return model.Readiness{
		Score:      model.Round2(clamp(score, 0, 100)),
		Components: components,
		Metrics:    m,
	}
}

// EstimateStages 把就绪度和各指标映射为三个阶段的分数
func EstimateStages(m model.Metrics, readiness float64) model.StageScores {
	prelims := PrelimsMax * 0.8 * (0.6*m.Accuracy + 0.25*readiness + 0.15*m.CurrentAffairs) / 100
	mains := MainsMax * 0.6 * (0.4*m.Completion + 0.2*m.Optional + 0.15*m.Essay + 0.25*readiness) / 100
	interview := 110 + 110*(0.7*readiness+0.3*m.Mood)/100

	s := model.StageScores{
		Prelims:      model.Round2(clamp(prelims, 0, PrelimsMax)),
		PrelimsMax:   PrelimsMax,
		Mains:        model.Round2(clamp(mains, 0, MainsMax)),
		MainsMax:     MainsMax,
		Interview:    model.Round2(clamp(interview, 0, InterviewMax)),
		InterviewMax: InterviewMax,
		FinalMax:     MainsMax + InterviewMax,
	}
	s.Final = model.Round2(s.Mains + s.Interview)
	return s
}

// BaseRank 按分段线性反比曲线把总分映射为排名
func BaseRank(finalScore float64) int {
	for _, b := range rankBands {
		if finalScore < b.minScore {
			continue
		}
		ratio := clamp((finalScore-b.minScore)/(b.maxScore-b.minScore), 0, 1)
		rank := float64(b.worstRank) - ratio*float64(b.worstRank-b.bestRank)
		return int(math.Max(1, math.Round(rank)))
	}
	return CandidatePopulation
}

func RankPercentile(rank int) float64 {
	return model.Round2((1 - float64(rank)/CandidatePopulation) * 100)
}

// JitterBand 按百分位选择扰动幅度：越靠前越窄
func JitterBand(percentile float64) float64 {
	switch {
	case percentile >= 99.9:
		return 0.02
	case percentile >= 99:
		return 0.05
	case percentile >= 90:
		return 0.10
	default:
		return 0.15
	}
}

// ApplyJitter 在 rank*(1±band) 内做一次均匀抽样，结果落在 [1, CandidatePopulation]
func ApplyJitter(rank int, band float64, rng *rand.Rand) int {
	offset := (rng.Float64()*2 - 1) * band
	jittered := math.Round(float64(rank) * (1 + offset))
	return int(clamp(jittered, 1, CandidatePopulation))
}

// SubjectRanks 单科排名：完成度越高排名越靠前，同样做带状扰动
func SubjectRanks(subjects []model.SubjectMetric, rng *rand.Rand) []model.SubjectRank {
	ranks := make([]model.SubjectRank, 0, len(subjects))
	for _, s := range subjects {
		gap := 1 - s.Completion/100
		base := int(math.Max(1, math.Round(CandidatePopulation*gap*gap)))
		rank := ApplyJitter(base, JitterBand(RankPercentile(base)), rng)
		ranks = append(ranks, model.SubjectRank{
			Subject:       s.Subject,
			Completion:    s.Completion,
			EstimatedRank: rank,
			Percentile:    RankPercentile(rank),
		})
	}
	return ranks
}

// QualificationProbability 基于排名、预选分数与就绪度的嵌套阈值规则，结果在 [1,95]
func QualificationProbability(rank int, stages model.StageScores, readiness float64) float64 {
	var p float64
	switch {
	case stages.Prelims < PrelimsCutoff:
		p = math.Min(readiness*0.3, 25)
	case rank <= 1000:
		if readiness >= 70 {
			p = 80 + math.Min(15, (readiness-70)/2)
		} else {
			p = 65
		}
	case rank <= 5000:
		p = 50 + float64(5000-rank)/4000*15
	case rank <= 50000:
		p = 25 + float64(50000-rank)/45000*20
	default:
		p = 10 + readiness*0.1
	}
	return model.Round2(clamp(p, 1, 95))
}

// Recommendations 规则生成的文字建议
func Recommendations(m model.Metrics, stages model.StageScores) []string {
	var recs []string

	if m.Completion < 50 {
		recs = append(recs, "Syllabus coverage is below 50%. Prioritise finishing lectures for the weakest GS subjects.")
	}
	if m.Accuracy < 60 {
		recs = append(recs, "Accuracy is under 60%. Solve previous-year questions topic-wise and review every wrong answer.")
	}
	if m.Speed < 50 {
		recs = append(recs, fmt.Sprintf("Average time per question exceeds the %.0f s target. Practise timed sectional tests.", TargetSecondsPerQuestion))
	}
	if m.Consistency < 50 {
		recs = append(recs, "Daily study hours vary a lot. Fix a minimum daily target and log it every day.")
	}
	if m.Mood < 50 {
		recs = append(recs, "Recent mood entries are low. Schedule breaks and a weekly rest half-day.")
	}
	if m.CurrentAffairs < 40 {
		recs = append(recs, "Current affairs coverage is low. Add a fixed daily newspaper and monthly compilation slot.")
	}
	if m.Essay < 30 {
		recs = append(recs, "Write at least one full essay per week and get it evaluated.")
	}
	if m.Optional < 50 {
		recs = append(recs, "Optional subject coverage is behind. Allocate dedicated weekly hours to the optional.")
	}
	if m.TestTrend < -2 {
		recs = append(recs, "Mock test scores are declining. Revisit recent mistakes before taking the next mock.")
	}
	if stages.Prelims < PrelimsCutoff {
		recs = append(recs, "Estimated prelims score is below the expected cutoff. Focus on prelims-oriented revision.")
	}

	// 按学科完成度补充最弱的两科
	weak := append([]model.SubjectMetric(nil), m.Subjects...)
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Completion < weak[j].Completion })
	for i := 0; i < len(weak) && i < 2; i++ {
		if weak[i].Completion < 70 {
			recs = append(recs, fmt.Sprintf("Strengthen %s (%.0f%% complete).", weak[i].Subject, weak[i].Completion))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Preparation is on track. Keep the current routine and increase full-length mock frequency.")
	}
	return recs
}

// DeriveSeed 由指标计算确定性种子，保证相同输入得到相同预测
func DeriveSeed(m model.Metrics) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f|%.2f",
		m.Completion, m.Accuracy, m.Speed, m.Consistency, m.Mood,
		m.TestAverage, m.TestTrend, m.Optional, m.CurrentAffairs, m.Essay)
	for _, s := range m.Subjects {
		fmt.Fprintf(h, "|%s:%.2f", s.Subject, s.Completion)
	}
	return int64(h.Sum64() & math.MaxInt64)
}

func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Predict 完整预测流水线。扰动只来自 seed，因此 (metrics, seed) 相同则输出相同
func Predict(m model.Metrics, seed int64, now time.Time) *model.Prediction {
	readiness := ReadinessScore(m)
	stages := EstimateStages(m, readiness.Score)

	rng := newSeededRand(seed)
	base := BaseRank(stages.Final)
	band := JitterBand(RankPercentile(base))
	rank := ApplyJitter(base, band, rng)

	return &model.Prediction{
		Readiness:                readiness.Score,
		Stages:                   stages,
		BaseRank:                 base,
		PredictedRank:            rank,
		Population:               CandidatePopulation,
		Percentile:               RankPercentile(rank),
		JitterBand:               band,
		QualificationProbability: QualificationProbability(rank, stages, readiness.Score),
		SubjectRanks:             SubjectRanks(m.Subjects, rng),
		Recommendations:          Recommendations(m, stages),
		Metrics:                  m,
		Seed:                     seed,
		GeneratedAt:              now,
	}
}

// FallbackPrediction 数据获取失败时返回的固定结果
func FallbackPrediction(now time.Time) *model.Prediction {
	return &model.Prediction{
		Readiness: 45,
		Stages: model.StageScores{
			Prelims:      92,
			PrelimsMax:   PrelimsMax,
			Mains:        720,
			MainsMax:     MainsMax,
			Interview:    160,
			InterviewMax: InterviewMax,
			Final:        880,
			FinalMax:     MainsMax + InterviewMax,
		},
		BaseRank:                 1800,
		PredictedRank:            1800,
		Population:               CandidatePopulation,
		Percentile:               RankPercentile(1800),
		JitterBand:               0,
		QualificationProbability: 35,
		SubjectRanks:             []model.SubjectRank{},
		Recommendations: []string{
			"Keep logging daily study hours, tests and practice attempts to get a personalised prediction.",
		},
		Fallback:    true,
		GeneratedAt: now,
	}
}
