package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTravelRequest は旅行プランの入力が範囲外の場合のエラーです。
var ErrInvalidTravelRequest = errors.New("invalid travel plan request")

const (
	MinTravelBudgetINR = 5000
	MinTravelDays      = 3
	MaxTravelDays      = 14
)

// TravelStyle は旅行の予算帯です。
type TravelStyle string

const (
	TravelBudget   TravelStyle = "Budget"
	TravelMidRange TravelStyle = "Mid-range"
	TravelLuxury   TravelStyle = "Luxury"
)

func TravelStyles() []TravelStyle {
	return []TravelStyle{TravelBudget, TravelMidRange, TravelLuxury}
}

// ParseTravelStyle は大文字小文字を区別せずにラベルを解釈します。
func ParseTravelStyle(s string) (TravelStyle, error) {
	label := strings.TrimSpace(s)
	for _, st := range TravelStyles() {
		if strings.EqualFold(label, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown travel style %q", ErrInvalidTravelRequest, s)
}

// TravelPlanRequest はインド国内旅行の行程作成リクエストです。
type TravelPlanRequest struct {
	Destination string
	BudgetINR   int
	Days        int
	Style       TravelStyle
}

// Validate は入力値の範囲を検証します。
func (r TravelPlanRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidTravelRequest)
	}
	if r.BudgetINR < MinTravelBudgetINR {
		return fmt.Errorf("%w: budget must be at least %d", ErrInvalidTravelRequest, MinTravelBudgetINR)
	}
	if r.Days < MinTravelDays || r.Days > MaxTravelDays {
		return fmt.Errorf("%w: days must be between %d and %d", ErrInvalidTravelRequest, MinTravelDays, MaxTravelDays)
	}
	if _, err := ParseTravelStyle(string(r.Style)); err != nil {
		return err
	}
	return nil
}

// TravelPlanResponse はモデルが返した行程テキストです。
type TravelPlanResponse struct {
	Text  string
	Model string
}
