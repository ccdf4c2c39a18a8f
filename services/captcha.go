package services

import (
	"context"
	"errors"
	"fmt"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"github.com/golang/glog"
	"google.golang.org/api/option"
)

var ErrCaptchaRejected = errors.New("reCAPTCHA verification failed")

type CaptchaRequest struct {
	Token     string
	Action    string
	UserIP    string
	UserAgent string
}

type Assessment struct {
	Score   float32  `json:"score"`
	Action  string   `json:"action"`
	Reasons []string `json:"reasons,omitempty"`
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, req CaptchaRequest) (*Assessment, error)
}

// Recaptcha checks tokens with reCAPTCHA Enterprise.
type Recaptcha struct {
	ProjectID       string
	SiteKey         string
	CredentialsFile string
}

func (r *Recaptcha) Verify(ctx context.Context, req CaptchaRequest) (*Assessment, error) {
	var opts []option.ClientOption
	if r.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(r.CredentialsFile))
	}
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reCAPTCHA client: %w", err)
	}
	defer client.Close()

	response, err := client.CreateAssessment(ctx, &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: fmt.Sprintf("projects/%s", r.ProjectID),
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:          req.Token,
				SiteKey:        r.SiteKey,
				UserIpAddress:  req.UserIP,
				UserAgent:      req.UserAgent,
				ExpectedAction: req.Action,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	props := response.TokenProperties
	if props == nil || !props.Valid {
		if props != nil {
			glog.Infof("[captcha]token invalid: %s\n", props.InvalidReason)
		}
		return nil, ErrCaptchaRejected
	}
	if req.Action != "" && props.Action != req.Action {
		glog.Infof("[captcha]action mismatch: expected %s, got %s\n", req.Action, props.Action)
		return nil, ErrCaptchaRejected
	}

	result := &Assessment{Action: props.Action}
	if risk := response.RiskAnalysis; risk != nil {
		result.Score = risk.Score
		for _, reason := range risk.Reasons {
			result.Reasons = append(result.Reasons, reason.String())
		}
	}
	return result, nil
}
