package generator

import (
	"fmt"
	"time"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

const storyPromptFormat = "Create a %s story based on these images and context: %s"

// TravelSystemPrompt は旅行プランナーのシステムプロンプトです。
const TravelSystemPrompt = "You are an expert travel planner specializing in Indian tourism."

const travelPromptFormat = `Create a %d-day %s itinerary for %s with ₹%d budget focusing on:
- Must-see cultural/historical sites
- Local transportation options (auto, taxi, buses)
- Authentic food experiences
- Budget-friendly hotels (₹ per night)
- Seasonal considerations (current month: %s)

Format clearly with daily sections and realistic pricing in INR.`

// BuildStoryPrompt は先頭テキストセグメントの文面を組み立てます。
func BuildStoryPrompt(style domain.Style, storyContext string) string {
	return fmt.Sprintf(storyPromptFormat, style.Prompt(), storyContext)
}

// BuildTravelPrompt は旅行プランの文面を組み立てます。
func BuildTravelPrompt(req domain.TravelPlanRequest, month time.Month) string {
	return fmt.Sprintf(travelPromptFormat, req.Days, req.Style, req.Destination, req.BudgetINR, month)
}
