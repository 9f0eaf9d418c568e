package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides for endpoints whose verb does not describe the action.
var routeOverrides = map[string]ActionResource{
	"POST /api/v1/insights/ai":          {Action: "generate", Resource: "ai_insight"},
	"POST /api/v1/insights/refresh":     {Action: "refresh", Resource: "insight"},
	"POST /api/v1/preferences/toggle":   {Action: "toggle", Resource: "preference"},
	"POST /api/v1/preferences/all":      {Action: "select_all", Resource: "preference"},
	"POST /api/v1/auth/logout":          {Action: "logout", Resource: "session"},
	"POST /api/v1/auth/forgot":          {Action: "password_reset_requested", Resource: "user"},
	"POST /api/v1/auth/reset":           {Action: "password_reset", Resource: "user"},
	"PUT /api/v1/subscription":          {Action: "update", Resource: "subscription"},
	"POST /api/v1/reports":              {Action: "generate", Resource: "report"},
	"DELETE /api/v1/indicators/:id":     {Action: "delete", Resource: "indicator"},
	"DELETE /api/v1/insights/:id":       {Action: "delete", Resource: "insight"},
	"GET /api/v1/dashboard":             {Action: "get", Resource: "dashboard"},
	"GET /api/v1/me":                    {Action: "get", Resource: "user"},
}

// ParseRoute returns action and resource for an HTTP method and route template
// (e.g. POST /api/v1/indicators). Action follows the verb: GET list or get (when the route ends in
// a parameter), POST create, PUT/PATCH update, DELETE delete. Resource is the singular of the
// first path segment after the version prefix.
func ParseRoute(method, route string) ActionResource {
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	trimmed := strings.Trim(route, "/")
	trimmed = strings.TrimPrefix(trimmed, "api/v1")
	segments := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	resource := singular(segments[0])
	last := segments[len(segments)-1]
	return ActionResource{Action: methodToAction(method, strings.HasPrefix(last, ":")), Resource: resource}
}

func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

func methodToAction(method string, byID bool) string {
	switch method {
	case http.MethodGet:
		if byID {
			return "get"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
