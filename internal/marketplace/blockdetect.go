package marketplace

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot page detected.
type BlockType string

const (
	BlockNone      BlockType = ""
	BlockChallenge BlockType = "challenge"
	BlockCaptcha   BlockType = "captcha"
	BlockJSShell   BlockType = "js_shell"
)

// DetectBlock checks a results page response for signs of bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	lower := strings.ToLower(string(body))

	if resp.StatusCode == http.StatusForbidden {
		return true, BlockChallenge
	}

	// eBay serves its bot check from /splashui/challenge.
	if strings.Contains(lower, "splashui/challenge") ||
		strings.Contains(lower, "pardon our interruption") ||
		strings.Contains(lower, "checking your browser") {
		return true, BlockChallenge
	}

	if strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}

	// A tiny page that only asks for JavaScript has no results in it.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
