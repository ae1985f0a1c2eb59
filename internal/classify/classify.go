package classify

import (
	"encoding/json"
	"strings"

	"github.com/everstacklabs/ask/internal/provider"
)

// Input carries everything the classifier is allowed to look at.
type Input struct {
	HTTPStatus   int
	Body         []byte
	Provider     provider.Provider
	Family       provider.EndpointFamily
	ModelID      string
	TokenPresent bool
	ArtifactPath string
}

// errorBody is the common error envelope both API families return.
type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Classify maps a non-2xx transport result into a typed category with a
// remediation hint. Rules are applied in priority order; a 200 must be
// short-circuited by the caller and never reaches here.
func Classify(in Input) *Error {
	msg, lower := extractMessage(in.Body)

	e := &Error{
		HTTPStatus:   in.HTTPStatus,
		Message:      msg,
		RawBody:      in.Body,
		ArtifactPath: in.ArtifactPath,
	}

	prof, known := provider.GetProfile(in.Provider)
	gated := known && prof.RequiresEntitlement

	switch {
	case (in.HTTPStatus == 400 || in.HTTPStatus == 403) &&
		in.Family == provider.FamilyGateway && gated && looksLikeEULA(lower):
		e.Category = EntitlementFailure
		e.Remediation = provider.EntitlementHint(in.Provider, in.ModelID)

	case (in.HTTPStatus == 401 || in.HTTPStatus == 403) && !in.TokenPresent:
		e.Category = AuthFailure
		e.Remediation = "no access token; run: gcloud auth application-default login"

	case in.HTTPStatus == 401:
		e.Category = AuthFailure
		e.Remediation = "credential rejected; refresh the token or API key and retry"

	case in.HTTPStatus == 403 && in.Family == provider.FamilyGateway && gated:
		// A 403 on a gated publisher without an explicit EULA message still
		// most often means the license was never accepted for the project.
		e.Category = EntitlementFailure
		e.Remediation = provider.EntitlementHint(in.Provider, in.ModelID)

	case in.HTTPStatus == 403:
		e.Category = AuthFailure
		e.Remediation = "permission denied; check IAM roles and that the API is enabled"

	case in.HTTPStatus == 429:
		e.Category = QuotaOrRateLimit
		e.Remediation = "quota or rate limit hit; wait and re-invoke"

	case in.HTTPStatus >= 400 && in.HTTPStatus < 500:
		e.Category = MalformedRequest
		e.Remediation = "the request payload was rejected; inspect the saved response body"

	case in.HTTPStatus >= 500 || in.HTTPStatus == 0:
		e.Category = TransportFailure
		e.Remediation = "server or network failure; re-invoke"

	default:
		e.Category = Unknown
		e.Remediation = "inspect the saved response body"
	}

	return e
}

// extractMessage pulls the provider error message out of the body, falling
// back to the raw text. The second return is the lowercased message for
// keyword sniffing.
func extractMessage(body []byte) (string, string) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message, strings.ToLower(eb.Error.Message)
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 400 {
		s = s[:400]
	}
	return s, strings.ToLower(s)
}

// looksLikeEULA reports whether an error message indicates an unaccepted
// end-user license rather than a plain permission problem.
func looksLikeEULA(lower string) bool {
	return strings.Contains(lower, "agreement") ||
		strings.Contains(lower, "eula") ||
		strings.Contains(lower, "terms")
}
