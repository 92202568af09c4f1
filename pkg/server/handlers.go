package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/generator"
)

const formImagesField = "images"

var (
	errInvalidForm = errors.New("invalid form")
	// errNoResult は処理が結果もエラーも返さずに終わった場合（ワーカー内の panic など）のエラーです。
	errNoResult = errors.New("generation finished without a result")
)

type storyPage struct {
	Title     string
	MaxImages int
	Styles    []domain.Style
	Style     domain.Style
	Context   string
	Story     string
	Error     string
	Warnings  []string
}

type travelPage struct {
	Title       string
	Styles      []domain.TravelStyle
	Style       domain.TravelStyle
	Destination string
	Budget      int
	Days        int
	MinBudget   int
	MinDays     int
	MaxDays     int
	Plan        string
	Error       string
}

// travelForm は /travel のフォーム値です。
type travelForm struct {
	Destination string `form:"destination"`
	Budget      int    `form:"budget"`
	Days        int    `form:"days"`
	Style       string `form:"style"`
}

func (s *Server) newStoryPage() storyPage {
	return storyPage{
		Title:     "Image Story Generator",
		MaxImages: s.maxImages,
		Styles:    domain.Styles(),
		Style:     domain.StyleNostalgic,
	}
}

func newTravelPage() travelPage {
	return travelPage{
		Title:     "India Travel Planner",
		Styles:    domain.TravelStyles(),
		Style:     domain.TravelMidRange,
		Budget:    20000,
		Days:      5,
		MinBudget: domain.MinTravelBudgetINR,
		MinDays:   domain.MinTravelDays,
		MaxDays:   domain.MaxTravelDays,
	}
}

func (s *Server) storyForm(c *gin.Context) {
	c.HTML(http.StatusOK, "story.html", s.newStoryPage())
}

func (s *Server) submitStory(c *gin.Context) {
	page := s.newStoryPage()
	page.Context = c.PostForm("context")
	if style, err := domain.ParseStyle(c.PostForm("style")); err == nil {
		page.Style = style
	}

	resp, err := s.generateFromUpload(c)
	if err != nil {
		page.Error = generator.ErrorMessage(err)
		c.HTML(statusFor(err), "story.html", page)
		return
	}
	page.Story = resp.Text
	page.Warnings = resp.Warnings
	c.HTML(http.StatusOK, "story.html", page)
}

func (s *Server) apiStory(c *gin.Context) {
	resp, err := s.generateFromUpload(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": generator.ErrorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"story":    resp.Text,
		"model":    resp.Model,
		"images":   resp.ImageCount,
		"warnings": resp.Warnings,
	})
}

// generateFromUpload はアップロード画像を一時ディレクトリに保存して物語を生成します。
// 一時ディレクトリは成功・失敗にかかわらず、関数を抜けるときに削除されます。
func (s *Server) generateFromUpload(c *gin.Context) (*domain.StoryResponse, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	files := form.File[formImagesField]
	if len(files) == 0 {
		return nil, generator.ErrNoImages
	}
	if s.maxImages > 0 && len(files) > s.maxImages {
		return nil, fmt.Errorf("%w: %d given, limit is %d", generator.ErrTooManyImages, len(files), s.maxImages)
	}

	dir, err := os.MkdirTemp("", "story-upload-*")
	if err != nil {
		return nil, fmt.Errorf("一時ディレクトリの作成に失敗しました: %w", err)
	}
	defer os.RemoveAll(dir)

	images := make([]domain.ImageInput, 0, len(files))
	for i, fh := range files {
		path := filepath.Join(dir, fmt.Sprintf("%02d_%s", i, filepath.Base(fh.Filename)))
		if err := c.SaveUploadedFile(fh, path); err != nil {
			return nil, fmt.Errorf("アップロード画像の保存に失敗しました (%s): %w", fh.Filename, err)
		}
		images = append(images, domain.ImageInput{Source: path, Name: fh.Filename})
	}

	req := domain.StoryRequest{
		Context: strings.TrimSpace(c.PostForm("context")),
		Style:   domain.Style(c.PostForm("style")),
		Images:  images,
	}

	var (
		resp   *domain.StoryResponse
		genErr error
	)
	ctx := c.Request.Context()
	if err := s.submit(func() { resp, genErr = s.story.Generate(ctx, req) }); err != nil {
		return nil, err
	}
	if genErr == nil && resp == nil {
		return nil, errNoResult
	}
	return resp, genErr
}

func (s *Server) travelForm(c *gin.Context) {
	c.HTML(http.StatusOK, "travel.html", newTravelPage())
}

func (s *Server) submitTravel(c *gin.Context) {
	page := newTravelPage()

	var form travelForm
	if err := c.ShouldBind(&form); err != nil {
		page.Error = generator.FormatError(generator.TravelErrorPrefix, fmt.Errorf("%w: %v", errInvalidForm, err))
		c.HTML(http.StatusBadRequest, "travel.html", page)
		return
	}
	page.Destination = form.Destination
	page.Budget = form.Budget
	page.Days = form.Days
	if style, err := domain.ParseTravelStyle(form.Style); err == nil {
		page.Style = style
	}

	req := domain.TravelPlanRequest{
		Destination: strings.TrimSpace(form.Destination),
		BudgetINR:   form.Budget,
		Days:        form.Days,
		Style:       domain.TravelStyle(form.Style),
	}

	var (
		resp    *domain.TravelPlanResponse
		planErr error
	)
	ctx := c.Request.Context()
	if err := s.submit(func() { resp, planErr = s.travel.Plan(ctx, req) }); err != nil {
		planErr = err
	}
	if planErr == nil && resp == nil {
		planErr = errNoResult
	}
	if planErr != nil {
		page.Error = generator.FormatError(generator.TravelErrorPrefix, planErr)
		c.HTML(statusFor(planErr), "travel.html", page)
		return
	}
	page.Plan = resp.Text
	c.HTML(http.StatusOK, "travel.html", page)
}

func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor はエラーを HTTP ステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidForm),
		errors.Is(err, generator.ErrNoImages),
		errors.Is(err, generator.ErrTooManyImages),
		errors.Is(err, domain.ErrUnknownStyle),
		errors.Is(err, domain.ErrInvalidTravelRequest):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
