package observability

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertFile struct {
	Groups []struct {
		Name  string      `yaml:"name"`
		Rules []alertRule `yaml:"rules"`
	} `yaml:"groups"`
}

var metricName = regexp.MustCompile(`club_[a-z_]+`)

func loadClubRules(t *testing.T) []alertRule {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "club.yml"))
	require.NoError(t, err)

	var file alertFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	for _, g := range file.Groups {
		if g.Name == "club-api" {
			return g.Rules
		}
	}
	t.Fatal("club-api alert group missing")
	return nil
}

// exportedFamilies returns the metric family names served once every
// collector has at least one sample.
func exportedFamilies(t *testing.T) map[string]bool {
	t.Helper()
	m := NewMetrics()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.Jobs().Observe("mail:send", nil, 0)
	m.Jobs().Observe("mail:send", assert.AnError, 0)

	families, err := m.registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestClubAlertRules(t *testing.T) {
	rules := loadClubRules(t)
	runbook, err := os.ReadFile(filepath.Join("..", "..", "docs", "runbook.md"))
	require.NoError(t, err)
	families := exportedFamilies(t)

	expected := map[string]string{
		"HighErrorRate":    "critical",
		"HighLatency":      "warning",
		"AuthFailureSpike": "warning",
		"MailJobsFailing":  "warning",
	}
	require.Len(t, rules, len(expected))

	for _, rule := range rules {
		severity, ok := expected[rule.Alert]
		require.True(t, ok, "unexpected rule %q", rule.Alert)
		assert.Equal(t, severity, rule.Labels["severity"], rule.Alert)
		assert.NotEmpty(t, rule.For, rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], rule.Alert)

		anchor, found := strings.CutPrefix(rule.Annotations["runbook"], "docs/runbook.md#")
		require.True(t, found, "rule %s runbook %q", rule.Alert, rule.Annotations["runbook"])
		assert.Contains(t, string(runbook), "## "+anchor, rule.Alert)

		refs := metricName.FindAllString(rule.Expr, -1)
		require.NotEmpty(t, refs, "rule %s references no club metric", rule.Alert)
		for _, ref := range refs {
			base := strings.TrimSuffix(ref, "_bucket")
			assert.True(t, families[base], "rule %s references unknown metric %s", rule.Alert, ref)
		}
	}
}
