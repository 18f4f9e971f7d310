package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"numrenohacks/config"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var recaptchaTimeout = 10 * time.Second

// RecaptchaResult is Google's siteverify answer. Score is the reCAPTCHA v3
// human-likelihood estimate in [0,1].
type RecaptchaResult struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Passed reports whether the verification succeeded with at least the
// given minimum score.
func (r *RecaptchaResult) Passed(minScore float64) bool {
	return r.Success && r.Score >= minScore
}

// VerifyRecaptcha checks a client token against Google's siteverify
// endpoint. A failed verification or a sub-threshold score must reject the
// request before any registration write happens.
func VerifyRecaptcha(token, remoteIP string) (*RecaptchaResult, error) {
	form := url.Values{}
	form.Set("secret", config.AppConfig.RecaptchaSecretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(recaptchaVerifyURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	if err := fasthttp.DoTimeout(req, resp, recaptchaTimeout); err != nil {
		return nil, fmt.Errorf("recaptcha verification request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("recaptcha verification returned status %d", resp.StatusCode())
	}

	var result RecaptchaResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode recaptcha response: %w", err)
	}
	return &result, nil
}
