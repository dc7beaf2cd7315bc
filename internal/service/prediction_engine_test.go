package service

import (
	"civilprep_backend/internal/model"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedSubjectCompletion(t *testing.T) {
	s := &model.SubjectProgress{TotalLectures: 20, CompletedLectures: 10, TotalDPPs: 10, CompletedDPPs: 5}
	assert.InDelta(t, 50, WeightedSubjectCompletion(s), 1e-9)

	s.RevisionCount = 3
	assert.InDelta(t, 56, WeightedSubjectCompletion(s), 1e-9)

	s.RevisionCount = 12
	assert.InDelta(t, 60, WeightedSubjectCompletion(s), 1e-9, "revision bonus caps at 10")

	full := &model.SubjectProgress{TotalLectures: 5, CompletedLectures: 5, TotalDPPs: 5, CompletedDPPs: 5, RevisionCount: 4}
	assert.Equal(t, 100.0, WeightedSubjectCompletion(full))

	assert.Equal(t, 0.0, WeightedSubjectCompletion(&model.SubjectProgress{}))
}

func TestAccuracyUsesRecentWindow(t *testing.T) {
	attempts := make([]model.QuestionAttempt, 150)
	for i := 0; i < RecentAttemptWindow; i++ {
		attempts[i].IsCorrect = true
	}
	assert.Equal(t, 100.0, Accuracy(attempts, nil))

	tests := []model.TestRecord{
		{TotalMarks: 100, ScoredMarks: 50},
		{TotalMarks: 100, ScoredMarks: 120},
	}
	assert.Equal(t, 75.0, Accuracy(nil, tests), "falls back to test average, over-scored tests clamp to 100")
	assert.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestSpeedScore(t *testing.T) {
	assert.Equal(t, 50.0, SpeedScore(nil))

	onTarget := []model.QuestionAttempt{{TimeTakenSeconds: 72}, {TimeTakenSeconds: 72}}
	assert.Equal(t, 80.0, SpeedScore(onTarget))

	slow := []model.QuestionAttempt{{TimeTakenSeconds: 172}}
	assert.Equal(t, 0.0, SpeedScore(slow))

	fast := []model.QuestionAttempt{{TimeTakenSeconds: 47}}
	assert.InDelta(t, 100, SpeedScore(fast), 1e-9)

	untimed := []model.QuestionAttempt{{TimeTakenSeconds: 0}}
	assert.Equal(t, 50.0, SpeedScore(untimed))
}

func TestDailyHoursZeroFills(t *testing.T) {
	today := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	ended := today.Add(-time.Hour)
	goals := []model.DailyGoal{
		{Date: "2025-01-14", HoursStudied: 2},
		{Date: "2025-01-14", HoursStudied: 1.5},
		{Date: "2025-01-10", HoursStudied: 4},
		{Date: "2024-12-01", HoursStudied: 9},
	}
	sessions := []model.StudySession{
		{StartedAt: time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC), EndedAt: &ended, DurationMinutes: 90},
		{StartedAt: time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC), DurationMinutes: 600},
	}

	hours := DailyHours(goals, sessions, today, 7)
	require.Len(t, hours, 7)
	assert.Equal(t, []float64{0, 0, 4, 0, 0, 1.5, 3.5}, hours)
}

func TestConsistency(t *testing.T) {
	steady := make([]float64, 14)
	for i := range steady {
		steady[i] = 3
	}
	assert.Equal(t, 100.0, Consistency(steady))

	assert.Equal(t, 0.0, Consistency([]float64{3, 3, 3}), "needs at least a week of data")
	assert.Equal(t, 0.0, Consistency(make([]float64, 14)))

	// 一半 0 一半 4 小时: mean 2, stddev 2, cv 1
	mixed := []float64{0, 4, 0, 4, 0, 4, 0, 4}
	assert.InDelta(t, 50, Consistency(mixed), 1e-9)
}

func TestMoodScore(t *testing.T) {
	assert.Equal(t, 60.0, MoodScore(nil))
	assert.Equal(t, 62.5, MoodScore([]model.MoodEntry{{Mood: model.MoodExcellent}, {Mood: model.MoodAnxious}}))

	moods := make([]model.MoodEntry, 20)
	for i := range moods {
		moods[i].Mood = model.MoodGood
		if i >= MoodWindow {
			moods[i].Mood = model.MoodStressed
		}
	}
	assert.Equal(t, 80.0, MoodScore(moods), "only the latest 14 entries count")
}

func TestTestTrend(t *testing.T) {
	rising := []model.TestRecord{
		{TotalMarks: 100, ScoredMarks: 40},
		{TotalMarks: 100, ScoredMarks: 50},
		{TotalMarks: 100, ScoredMarks: 60},
	}
	assert.InDelta(t, 10, TestTrend(rising), 1e-9)

	assert.Equal(t, 0.0, TestTrend(rising[:1]))

	// 只看最近 5 次
	tests := []model.TestRecord{{TotalMarks: 100, ScoredMarks: 100}}
	for i := 0; i < 5; i++ {
		tests = append(tests, model.TestRecord{TotalMarks: 100, ScoredMarks: 30})
	}
	assert.InDelta(t, 0, TestTrend(tests), 1e-9)
}

func TestAggregate(t *testing.T) {
	today := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	var goals []model.DailyGoal
	for i := 0; i < ConsistencyWindowDays; i++ {
		goals = append(goals, model.DailyGoal{Date: today.AddDate(0, 0, -i).Format("2006-01-02"), HoursStudied: 2})
	}

	in := &PredictionInput{
		Subjects: []model.SubjectProgress{
			{SubjectName: "Polity", TotalLectures: 10, CompletedLectures: 10, TotalDPPs: 10, CompletedDPPs: 10},
			{SubjectName: "Economy", TotalLectures: 10, CompletedLectures: 0, TotalDPPs: 10, CompletedDPPs: 0},
		},
		Attempts:       []model.QuestionAttempt{{IsCorrect: true, TimeTakenSeconds: 72}, {IsCorrect: false, TimeTakenSeconds: 72}},
		Goals:          goals,
		Moods:          []model.MoodEntry{{Mood: model.MoodGood}},
		Optional:       []model.OptionalSection{{TotalItems: 10, CompletedItems: 5}, {TotalItems: 10, CompletedItems: 0}},
		CurrentAffairs: &model.CurrentAffairsProgress{CompletedTopics: 150, CompletedLectures: 75},
		Essay:          &model.EssayProgress{EssaysWritten: 40, CompletedLectures: 25, TopicsPractised: 60},
		Today:          today,
	}

	m := Aggregate(in)
	assert.Equal(t, 50.0, m.Completion)
	assert.Equal(t, 50.0, m.Accuracy)
	assert.Equal(t, 80.0, m.Speed)
	assert.Equal(t, 100.0, m.Consistency)
	assert.Equal(t, 80.0, m.Mood)
	assert.Equal(t, 25.0, m.Optional)
	assert.Equal(t, 50.0, m.CurrentAffairs)
	assert.Equal(t, 100.0, m.Essay)
	assert.Equal(t, 14.0, m.WeeklyHours)
	assert.Equal(t, 2, m.AttemptsSampled)
	require.Len(t, m.Subjects, 2)
	assert.Equal(t, "Polity", m.Subjects[0].Subject)
	assert.Equal(t, 100.0, m.Subjects[0].Completion)
}

func TestReadinessScoreClamps(t *testing.T) {
	perfect := model.Metrics{
		Completion: 100, Accuracy: 100, Consistency: 100, Speed: 100,
		Mood: 100, Optional: 100, CurrentAffairs: 100, Essay: 100, TestTrend: 20,
	}
	r := ReadinessScore(perfect)
	assert.Equal(t, 100.0, r.Score)
	assert.Equal(t, 5.0, r.Components["test_trend"])
	assert.Equal(t, 30.0, r.Components["completion"])

	empty := model.Metrics{TestTrend: -20}
	assert.Equal(t, 0.0, ReadinessScore(empty).Score)

	half := model.Metrics{
		Completion: 50, Accuracy: 50, Consistency: 50, Speed: 50,
		Mood: 50, Optional: 50, CurrentAffairs: 50, Essay: 50,
	}
	assert.Equal(t, 50.0, ReadinessScore(half).Score)
}

func TestEstimateStages(t *testing.T) {
	m := model.Metrics{Accuracy: 100, CurrentAffairs: 100, Completion: 100, Optional: 100, Essay: 100, Mood: 100}
	s := EstimateStages(m, 100)
	assert.Equal(t, 160.0, s.Prelims)
	assert.Equal(t, 1050.0, s.Mains)
	assert.Equal(t, 220.0, s.Interview)
	assert.Equal(t, 1270.0, s.Final)
	assert.Equal(t, MainsMax+InterviewMax, s.FinalMax)

	zero := EstimateStages(model.Metrics{}, 0)
	assert.Equal(t, 0.0, zero.Prelims)
	assert.Equal(t, 110.0, zero.Interview)
	assert.Equal(t, 110.0, zero.Final)
}

func TestBaseRank(t *testing.T) {
	assert.Equal(t, 1, BaseRank(MainsMax+InterviewMax))
	assert.Equal(t, 100, BaseRank(1000))
	assert.Equal(t, 550, BaseRank(950))
	assert.Equal(t, 1000, BaseRank(900))
	assert.Equal(t, 5000, BaseRank(800))
	assert.Equal(t, 300000, BaseRank(400))
	assert.Equal(t, CandidatePopulation, BaseRank(0))

	// 分数越高排名越靠前
	prev := BaseRank(0)
	for score := 50.0; score <= 1300; score += 50 {
		r := BaseRank(score)
		assert.LessOrEqual(t, r, prev, "score %.0f", score)
		prev = r
	}
}

func TestJitterBand(t *testing.T) {
	assert.Equal(t, 0.02, JitterBand(99.95))
	assert.Equal(t, 0.05, JitterBand(99.5))
	assert.Equal(t, 0.10, JitterBand(95))
	assert.Equal(t, 0.15, JitterBand(50))
}

func TestApplyJitterStaysInBand(t *testing.T) {
	for seed := int64(0); seed < 500; seed++ {
		rng := newSeededRand(seed)
		r := ApplyJitter(10000, 0.15, rng)
		assert.GreaterOrEqual(t, r, 8500)
		assert.LessOrEqual(t, r, 11500)
	}

	rng := newSeededRand(7)
	for i := 0; i < 100; i++ {
		r := ApplyJitter(1, 0.15, rng)
		assert.GreaterOrEqual(t, r, 1)
		r = ApplyJitter(CandidatePopulation, 0.15, rng)
		assert.LessOrEqual(t, r, CandidatePopulation)
	}
}

func TestQualificationProbability(t *testing.T) {
	below := model.StageScores{Prelims: PrelimsCutoff - 1}
	assert.Equal(t, 25.0, QualificationProbability(100, below, 100))
	assert.Equal(t, 3.0, QualificationProbability(100, below, 10))

	pass := model.StageScores{Prelims: 150}
	assert.Equal(t, 90.0, QualificationProbability(500, pass, 90))
	assert.Equal(t, 65.0, QualificationProbability(500, pass, 60))
	assert.Equal(t, 50.0, QualificationProbability(5000, pass, 60))
	assert.Equal(t, 25.0, QualificationProbability(50000, pass, 60))
	assert.Equal(t, 10.0, QualificationProbability(CandidatePopulation, pass, 0))

	for _, rank := range []int{1, 999, 4000, 20000, 900000} {
		for _, readiness := range []float64{0, 35, 70, 100} {
			p := QualificationProbability(rank, pass, readiness)
			assert.GreaterOrEqual(t, p, 1.0)
			assert.LessOrEqual(t, p, 95.0)
		}
	}
}

func sampleMetrics() model.Metrics {
	return model.Metrics{
		Completion: 62, Accuracy: 71, Speed: 64, Consistency: 58, Mood: 70,
		TestAverage: 55, TestTrend: 1.5, Optional: 40, CurrentAffairs: 35, Essay: 20,
		Subjects: []model.SubjectMetric{
			{Subject: "Polity", Completion: 80},
			{Subject: "Economy", Completion: 35},
			{Subject: "Geography", Completion: 55},
		},
	}
}

func TestPredictIsDeterministicForSeed(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	m := sampleMetrics()

	a := Predict(m, 42, now)
	b := Predict(m, 42, now)
	assert.Equal(t, a, b)

	seed := DeriveSeed(m)
	assert.Equal(t, seed, DeriveSeed(sampleMetrics()))
	assert.GreaterOrEqual(t, seed, int64(0))
}

func TestPredictRankWithinJitterBand(t *testing.T) {
	now := time.Now()
	m := sampleMetrics()
	for seed := int64(1); seed <= 200; seed++ {
		p := Predict(m, seed, now)
		lo := math.Floor(float64(p.BaseRank) * (1 - p.JitterBand))
		hi := math.Ceil(float64(p.BaseRank) * (1 + p.JitterBand))
		assert.GreaterOrEqual(t, float64(p.PredictedRank), lo)
		assert.LessOrEqual(t, float64(p.PredictedRank), hi)
		assert.Len(t, p.SubjectRanks, 3)
		assert.False(t, p.Fallback)
		assert.NotEmpty(t, p.Recommendations)
	}
}

func TestSubjectRanksOrderByCompletion(t *testing.T) {
	rng := newSeededRand(3)
	ranks := SubjectRanks([]model.SubjectMetric{
		{Subject: "Strong", Completion: 95},
		{Subject: "Weak", Completion: 10},
	}, rng)
	require.Len(t, ranks, 2)
	assert.Less(t, ranks[0].EstimatedRank, ranks[1].EstimatedRank)
}

func TestRecommendations(t *testing.T) {
	m := sampleMetrics()
	recs := Recommendations(m, EstimateStages(m, 60))
	assert.Contains(t, recs, "Strengthen Economy (35% complete).")
	assert.Contains(t, recs, "Strengthen Geography (55% complete).")

	strong := model.Metrics{
		Completion: 90, Accuracy: 90, Speed: 90, Consistency: 90, Mood: 90,
		Optional: 90, CurrentAffairs: 90, Essay: 90,
	}
	recs = Recommendations(strong, model.StageScores{Prelims: 150})
	assert.Len(t, recs, 1)
}

func TestFallbackPrediction(t *testing.T) {
	p := FallbackPrediction(time.Now())
	assert.True(t, p.Fallback)
	assert.Equal(t, 1800, p.PredictedRank)
	assert.Equal(t, CandidatePopulation, p.Population)
	assert.NotNil(t, p.SubjectRanks)
}
