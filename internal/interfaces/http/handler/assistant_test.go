package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	assistantapp "github.com/troves/backend/internal/application/assistant"
	"github.com/troves/backend/internal/domain/assistant"
	"github.com/troves/backend/internal/domain/shared"
	"github.com/troves/backend/internal/interfaces/http/dto"
	"github.com/troves/backend/internal/interfaces/http/middleware"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Chat(ctx context.Context, req assistantapp.ChatRequest) (*assistantapp.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistantapp.ChatResponse), args.Error(1)
}

func (m *mockAssistant) DescribeProduct(ctx context.Context, productID uuid.UUID) (*assistantapp.DescribeResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistantapp.DescribeResponse), args.Error(1)
}

func (m *mockAssistant) MatchCrystals(ctx context.Context, req assistantapp.MatchRequest) (*assistantapp.MatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistantapp.MatchResponse), args.Error(1)
}

func (m *mockAssistant) MoonGuidance(ctx context.Context, at time.Time) (*assistantapp.MoonResponse, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistantapp.MoonResponse), args.Error(1)
}

func (m *mockAssistant) GenerateImage(ctx context.Context, req assistantapp.ImageRequest) (*assistantapp.ImageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistantapp.ImageResponse), args.Error(1)
}

func (m *mockAssistant) ProviderStatus() []assistantapp.ProviderStatus {
	return m.Called().Get(0).([]assistantapp.ProviderStatus)
}

func newAssistantRouter(t *testing.T, a Assistant) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	h := NewAssistantHandler(a)
	r := gin.New()
	g := r.Group("/assistant")
	g.POST("/chat", h.Chat)
	g.POST("/describe", h.Describe)
	g.POST("/match", h.Match)
	g.GET("/moon", h.Moon)
	g.POST("/images", h.GenerateImage)
	g.GET("/providers", h.Providers)
	return r
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAssistantHandler_Chat(t *testing.T) {
	a := new(mockAssistant)
	a.On("Chat", mock.Anything, assistantapp.ChatRequest{Message: "I need calm"}).
		Return(&assistantapp.ChatResponse{
			Reply:    "Amethyst is a gentle companion for calm.",
			Source:   assistant.SourceProvider,
			Provider: "pollinations",
			Crystals: []string{"amethyst"},
		}, nil)
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodPost, "/assistant/chat", `{"message":"I need calm"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp assistantapp.ChatResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "pollinations", resp.Provider)
	assert.Equal(t, []string{"amethyst"}, resp.Crystals)
	a.AssertExpectations(t)
}

func TestAssistantHandler_ChatValidation(t *testing.T) {
	a := new(mockAssistant)
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodPost, "/assistant/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/assistant/chat", `{"message":"`+strings.Repeat("a", 2001)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	a.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestAssistantHandler_DescribeUnknownProduct(t *testing.T) {
	id := uuid.New()
	a := new(mockAssistant)
	a.On("DescribeProduct", mock.Anything, id).Return(nil, shared.ErrNotFound)
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodPost, "/assistant/describe", `{"product_id":"`+id.String()+`"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	a.AssertExpectations(t)
}

func TestAssistantHandler_Match(t *testing.T) {
	want := assistantapp.MatchRequest{Intentions: []string{"love"}, BirthMonth: 2, Zodiac: "pisces"}
	a := new(mockAssistant)
	a.On("MatchCrystals", mock.Anything, want).Return(&assistantapp.MatchResponse{
		Matches: []assistantapp.CrystalMatch{{Name: "amethyst", Score: 6}},
	}, nil)
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodPost, "/assistant/match", `{"intentions":["love"],"birth_month":2,"zodiac":"pisces"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/assistant/match", `{"birth_month":13}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	a.AssertNumberOfCalls(t, "MatchCrystals", 1)
}

func TestAssistantHandler_Moon(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantAt     time.Time
		wantStatus int
	}{
		{name: "default is now", query: "", wantAt: time.Time{}, wantStatus: http.StatusOK},
		{name: "date", query: "?at=2026-03-14", wantAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), wantStatus: http.StatusOK},
		{name: "timestamp", query: "?at=2026-03-14T20:30:00Z", wantAt: time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC), wantStatus: http.StatusOK},
		{name: "garbage", query: "?at=next-tuesday", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := new(mockAssistant)
			a.On("MoonGuidance", mock.Anything, mock.MatchedBy(func(at time.Time) bool {
				return at.Equal(tt.wantAt)
			})).Return(&assistantapp.MoonResponse{Phase: "Full Moon"}, nil).Maybe()
			r := newAssistantRouter(t, a)

			w := doJSON(r, http.MethodGet, "/assistant/moon"+tt.query, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				a.AssertNumberOfCalls(t, "MoonGuidance", 1)
			} else {
				a.AssertNotCalled(t, "MoonGuidance", mock.Anything, mock.Anything)
				assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
			}
		})
	}
}

func TestAssistantHandler_GenerateImage(t *testing.T) {
	a := new(mockAssistant)
	a.On("GenerateImage", mock.Anything, assistantapp.ImageRequest{Prompt: "rose quartz on linen"}).
		Return(&assistantapp.ImageResponse{URL: "https://cdn.example/x.png", ContentType: "image/png"}, nil).Once()
	a.On("GenerateImage", mock.Anything, assistantapp.ImageRequest{Prompt: "obsidian"}).
		Return(nil, shared.NewDomainError("IMAGE_UNAVAILABLE", "Image generation is unavailable")).Once()
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodPost, "/assistant/images", `{"prompt":"rose quartz on linen"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/assistant/images", `{"prompt":"obsidian"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeImageUnavailable, decodeResponse(t, w).Error.Code)

	w = doJSON(r, http.MethodPost, "/assistant/images", `{"prompt":"ok","width":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	a.AssertExpectations(t)
}

func TestAssistantHandler_Providers(t *testing.T) {
	a := new(mockAssistant)
	a.On("ProviderStatus").Return([]assistantapp.ProviderStatus{
		{Name: "pollinations", Priority: 1, Enabled: true, Attempts: 4, Failures: 1},
	})
	r := newAssistantRouter(t, a)

	w := doJSON(r, http.MethodGet, "/assistant/providers", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []assistantapp.ProviderStatus
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Failures)
}
