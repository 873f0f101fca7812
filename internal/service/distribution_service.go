package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"qualitivate/internal/domains"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

type DistributionService struct {
	surveys       SurveyProvider
	distributions DistributionProvider
	mailer        Mailer
	baseURL       string
}

type DistributionProvider interface {
	SaveDistribution(ctx context.Context, distribution domains.Distribution) (domains.Distribution, error)
	GetDistribution(ctx context.Context, distributionID string) (domains.Distribution, error)
	ListDistributions(ctx context.Context, surveyID string) ([]domains.DistributionSummary, error)
}

// Mailer sends one invitation. The gomail-backed implementation lives in
// the transport wiring; tests supply a stub.
type Mailer interface {
	Send(to, subject, body string) error
}

func NewDistributionService(surveys SurveyProvider, distributions DistributionProvider, mailer Mailer, baseURL string) *DistributionService {
	return &DistributionService{
		surveys:       surveys,
		distributions: distributions,
		mailer:        mailer,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

func (s *DistributionService) targetURL(surveyID, distributionID string) string {
	return fmt.Sprintf("%s/take/%s?d=%s", s.baseURL, surveyID, distributionID)
}

// Create builds a distribution for the channel: the shared target URL plus
// the channel payload (QR image, embed snippet, or the email send report).
func (s *DistributionService) Create(ctx context.Context, actor domains.Actor, surveyID string, create domains.DistributionCreate) (domains.Distribution, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Distribution{}, err
	}
	if err := authorizeSurveyManage(actor, survey); err != nil {
		return domains.Distribution{}, err
	}
	if !domains.ValidDistributionChannel(create.Channel) {
		return domains.Distribution{}, NewValidationError("unknown distribution channel %q", create.Channel)
	}

	distribution := domains.Distribution{
		ID:        uuid.NewString(),
		SurveyID:  surveyID,
		Channel:   create.Channel,
		CreatedBy: actor.UserID,
	}
	distribution.TargetURL = s.targetURL(surveyID, distribution.ID)

	switch create.Channel {
	case domains.DistributionChannelQR:
		image, err := qrDataURL(distribution.TargetURL)
		if err != nil {
			return domains.Distribution{}, fmt.Errorf("render qr code: %w", err)
		}
		distribution.QRImage = image
	case domains.DistributionChannelEmbed:
		distribution.EmbedCode = embedSnippet(distribution.TargetURL)
	case domains.DistributionChannelEmail:
		if len(create.Recipients) == 0 {
			return domains.Distribution{}, NewValidationError("email distribution needs at least one recipient")
		}
		if s.mailer == nil {
			return domains.Distribution{}, ErrEmailSenderMissing
		}
		distribution.EmailSends = s.sendInvitations(survey, distribution.TargetURL, create)
	}

	saved, err := s.distributions.SaveDistribution(ctx, distribution)
	if err != nil {
		return domains.Distribution{}, err
	}
	return saved, nil
}

// sendInvitations attempts every recipient; one failure is recorded on its
// row and never stops the rest of the batch.
func (s *DistributionService) sendInvitations(survey domains.Survey, targetURL string, create domains.DistributionCreate) []domains.EmailSendResult {
	subject := create.Subject
	if subject == "" {
		subject = "You are invited to take the survey: " + survey.Title
	}
	body := create.Message
	if body == "" {
		body = "Please share your feedback."
	}
	body = body + "\n\n" + targetURL

	results := make([]domains.EmailSendResult, 0, len(create.Recipients))
	for _, recipient := range create.Recipients {
		result := domains.EmailSendResult{Recipient: recipient, Sent: true}
		if err := s.mailer.Send(recipient, subject, body); err != nil {
			slog.Error("invitation send failed", "err", err, "recipient", recipient, "survey_id", survey.ID)
			result.Sent = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func qrDataURL(target string) (string, error) {
	png, err := qrcode.Encode(target, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func embedSnippet(target string) string {
	return fmt.Sprintf(`<iframe src=%q width="100%%" height="600" frameborder="0"></iframe>`, target)
}

func (s *DistributionService) Get(ctx context.Context, actor domains.Actor, distributionID string) (domains.Distribution, error) {
	distribution, err := s.distributions.GetDistribution(ctx, distributionID)
	if err != nil {
		return domains.Distribution{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, distribution.SurveyID)
	if err != nil {
		return domains.Distribution{}, fmt.Errorf("load owning survey: %w", err)
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return domains.Distribution{}, err
	}
	return distribution, nil
}

// List returns the survey's distributions with attributed response counts.
func (s *DistributionService) List(ctx context.Context, actor domains.Actor, surveyID string) ([]domains.DistributionSummary, error) {
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSurveyRead(actor, survey); err != nil {
		return nil, err
	}
	return s.distributions.ListDistributions(ctx, surveyID)
}
