package dom

import "strings"

// Challenge kinds returned by Snapshot.Challenge.
const (
	ChallengeCloudflare = "cloudflare"
	ChallengeTurnstile  = "cloudflare-turnstile"
	ChallengeHCaptcha   = "hcaptcha"
	ChallengeReCAPTCHA  = "recaptcha"
	ChallengeQueue      = "queue"
	ChallengeBlocked    = "access-denied"
)

// Challenge names the interstitial the snapshot shows, or "" for a normal
// page. It only recognises the page; nothing here interacts with it.
func (s *Snapshot) Challenge() string {
	if s == nil || s.Doc == nil {
		return ""
	}
	title := strings.ToLower(s.Title)
	html := strings.ToLower(s.HTML)

	switch {
	case strings.Contains(title, "just a moment"),
		strings.Contains(title, "attention required"),
		s.Has("#cf-challenge-running, .cf-browser-verification"),
		strings.Contains(html, "cf_chl_opt"):
		return ChallengeCloudflare
	case s.Has(".cf-turnstile"),
		strings.Contains(html, "challenges.cloudflare.com/turnstile"):
		return ChallengeTurnstile
	case s.Has(".h-captcha"), strings.Contains(html, "hcaptcha.com"):
		return ChallengeHCaptcha
	case s.Has(".g-recaptcha"), strings.Contains(html, "google.com/recaptcha"):
		return ChallengeReCAPTCHA
	// The booking service fronts busy periods with a waiting room.
	case strings.Contains(title, "queue"), strings.Contains(html, "queue-it"):
		return ChallengeQueue
	case strings.Contains(title, "access denied"),
		strings.Contains(title, "blocked"),
		strings.Contains(html, "robot or human"):
		return ChallengeBlocked
	}
	return ""
}
