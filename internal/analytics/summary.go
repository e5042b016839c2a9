// Package analytics derives chart data from a user's check-ins. Nothing
// here is persisted.
package analytics

import (
	"sort"

	"github.com/healthbite/backend/internal/models"
)

var moodScores = map[string]int{
	models.MoodHappy:   1,
	models.MoodNeutral: 0,
	models.MoodSad:     -1,
}

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MealScore struct {
	Meal  string  `json:"meal"`
	Score float64 `json:"score"`
}

type ProgressPoint struct {
	Date     string `json:"date"`
	Progress int    `json:"progress"`
}

type Summary struct {
	TotalCheckIns   int             `json:"totalCheckIns"`
	Symptoms        []Count         `json:"symptoms"`
	Moods           []Count         `json:"moods"`
	MealScores      []MealScore     `json:"mealScores"`
	Progress        []ProgressPoint `json:"progress"`
	AverageProgress float64         `json:"averageProgress"`
}

// Summarize computes symptom frequency (first-seen order), the mood
// distribution across all meals, the average mood score per meal and the
// progress trend ordered by date.
func Summarize(checkIns []models.CheckIn) Summary {
	summary := Summary{
		TotalCheckIns: len(checkIns),
		Symptoms:      []Count{},
		Progress:      []ProgressPoint{},
	}

	symptomIndex := map[string]int{}
	moodCount := map[string]int{}
	mealTotals := [3]int{}
	progressTotal := 0

	for _, c := range checkIns {
		for _, symptom := range c.Symptoms {
			if i, ok := symptomIndex[symptom]; ok {
				summary.Symptoms[i].Count++
				continue
			}
			symptomIndex[symptom] = len(summary.Symptoms)
			summary.Symptoms = append(summary.Symptoms, Count{Name: symptom, Count: 1})
		}

		for i, meal := range []models.MealEntry{c.Breakfast, c.Lunch, c.Dinner} {
			if score, ok := moodScores[meal.Mood]; ok {
				moodCount[meal.Mood]++
				mealTotals[i] += score
			}
		}

		summary.Progress = append(summary.Progress, ProgressPoint{Date: c.Date, Progress: c.Progress})
		progressTotal += c.Progress
	}

	sort.SliceStable(summary.Progress, func(i, j int) bool {
		return summary.Progress[i].Date < summary.Progress[j].Date
	})

	summary.Moods = []Count{
		{Name: models.MoodHappy, Count: moodCount[models.MoodHappy]},
		{Name: models.MoodNeutral, Count: moodCount[models.MoodNeutral]},
		{Name: models.MoodSad, Count: moodCount[models.MoodSad]},
	}

	summary.MealScores = make([]MealScore, 0, 3)
	for i, meal := range []string{"breakfast", "lunch", "dinner"} {
		score := 0.0
		if len(checkIns) > 0 {
			score = float64(mealTotals[i]) / float64(len(checkIns))
		}
		summary.MealScores = append(summary.MealScores, MealScore{Meal: meal, Score: score})
	}

	if len(checkIns) > 0 {
		summary.AverageProgress = float64(progressTotal) / float64(len(checkIns))
	}

	return summary
}

// MotivationalMessage is shown after a check-in is saved.
func MotivationalMessage(progress int) string {
	switch {
	case progress >= 8:
		return "Amazing progress! Keep up the great work!"
	case progress >= 6:
		return "You're doing well! Stay consistent."
	default:
		return "Every small step counts. Let's focus on tomorrow!"
	}
}
