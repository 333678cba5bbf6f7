package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fisikaku/fisikaku-api/internal/auth"
	"github.com/fisikaku/fisikaku-api/internal/dto"
	"github.com/fisikaku/fisikaku-api/internal/service"
)

type fakeGradingService struct {
	gradeResult dto.GradeEssayResponse
	gradeErr    error
	draftResult dto.FeedbackDraftResponse
	draftErr    error

	gotSubmissionID uint
	gotQuestionID   uint
	gotPayload      dto.GradeEssayRequest
}

func (f *fakeGradingService) GradeEssay(_ context.Context, _ auth.Caller, submissionID, questionID uint, payload dto.GradeEssayRequest) (dto.GradeEssayResponse, error) {
	f.gotSubmissionID = submissionID
	f.gotQuestionID = questionID
	f.gotPayload = payload
	if f.gradeErr != nil {
		return dto.GradeEssayResponse{}, f.gradeErr
	}
	return f.gradeResult, nil
}

func (f *fakeGradingService) SuggestFeedback(_ context.Context, _ auth.Caller, submissionID, questionID uint) (dto.FeedbackDraftResponse, error) {
	f.gotSubmissionID = submissionID
	f.gotQuestionID = questionID
	if f.draftErr != nil {
		return dto.FeedbackDraftResponse{}, f.draftErr
	}
	return f.draftResult, nil
}

func newGradingApp(svc service.GradingService) *fiber.App {
	app := fiber.New()
	group := app.Group("/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", auth.RoleTeacher)
		return c.Next()
	})
	NewGradingHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func patchJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	response, err := app.Test(request, -1)
	require.NoError(t, err)
	return response
}

func TestGradeEssayReturnsFinalScore(t *testing.T) {
	svc := &fakeGradingService{gradeResult: dto.GradeEssayResponse{FinalScore: 90, Graded: true}}
	app := newGradingApp(svc)

	score := 8.0
	response := patchJSON(t, app, "/submissions/7/essays/12/grade", dto.GradeEssayRequest{
		Score:    &score,
		Feedback: "Bagus.",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	envelope := decodeEnvelope(t, response)
	require.True(t, envelope.Success)
	require.Equal(t, "essay graded", envelope.Message)

	require.EqualValues(t, 7, svc.gotSubmissionID)
	require.EqualValues(t, 12, svc.gotQuestionID)
	require.Equal(t, 8.0, *svc.gotPayload.Score)
}

func TestGradeEssayMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"submission missing", service.ErrSubmissionNotFound, http.StatusNotFound},
		{"not essay", service.ErrQuestionNotEssay, http.StatusBadRequest},
		{"score too high", service.ErrScoreExceedsMax, http.StatusBadRequest},
		{"answer missing", service.ErrAnswerNotFound, http.StatusNotFound},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeGradingService{gradeErr: tc.err}
			app := newGradingApp(svc)

			score := 5.0
			response := patchJSON(t, app, "/submissions/7/essays/12/grade", dto.GradeEssayRequest{Score: &score})
			require.Equal(t, tc.status, response.StatusCode)
			require.False(t, decodeEnvelope(t, response).Success)
		})
	}
}

func TestSuggestFeedbackReturnsDraft(t *testing.T) {
	svc := &fakeGradingService{draftResult: dto.FeedbackDraftResponse{Draft: "Penjelasan sudah runtut."}}
	app := newGradingApp(svc)

	request := httptest.NewRequest(http.MethodPost, "/submissions/7/essays/12/feedback-draft", nil)
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.True(t, decodeEnvelope(t, response).Success)
}

func TestSuggestFeedbackUnconfigured(t *testing.T) {
	svc := &fakeGradingService{draftErr: service.ErrFeedbackUnavailable}
	app := newGradingApp(svc)

	request := httptest.NewRequest(http.MethodPost, "/submissions/7/essays/12/feedback-draft", nil)
	response, err := app.Test(request, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, response.StatusCode)
}
