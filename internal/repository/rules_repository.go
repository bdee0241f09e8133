package repository

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

// RulesRepository loads the declarative department rules document. The
// document is optional: a missing or unreadable file degrades to the empty
// rule set so allocation falls back to pool selection and SHARED defaults.
type RulesRepository struct {
	path   string
	logger *zap.Logger
}

// NewRulesRepository constructs a rules repository for the given path.
func NewRulesRepository(path string, logger *zap.Logger) *RulesRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RulesRepository{path: path, logger: logger}
}

// Load reads and normalises the rules document.
func (r *RulesRepository) Load() models.RuleSet {
	var ruleSet models.RuleSet
	if r.path == "" {
		return ruleSet
	}
	if _, err := os.Stat(r.path); err != nil {
		r.logger.Info("department rules document absent, using empty rule set", zap.String("path", r.path))
		return ruleSet
	}

	// The default "." key delimiter would split map keys like "Dr. Mehta"
	// into nested maps and fail the decode, discarding the whole document.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(r.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		r.logger.Warn("failed to read department rules, using empty rule set", zap.String("path", r.path), zap.Error(err))
		return ruleSet
	}
	if err := v.Unmarshal(&ruleSet); err != nil {
		r.logger.Warn("failed to decode department rules, using empty rule set", zap.String("path", r.path), zap.Error(err))
		return models.RuleSet{}
	}

	return normalizeRuleSet(ruleSet)
}

// normalizeRuleSet uppercases every name so matching stays case-insensitive
// end to end.
func normalizeRuleSet(in models.RuleSet) models.RuleSet {
	out := models.RuleSet{Policy: in.Policy}
	if len(in.Departments) == 0 {
		return out
	}
	out.Departments = make(map[string]models.DepartmentRules, len(in.Departments))
	for dept, rules := range in.Departments {
		normalized := models.DepartmentRules{
			Doctors:    normalizedNames(rules.Doctors),
			Assistants: upperAll(rules.Assistants),
		}
		if len(rules.Roles) > 0 {
			normalized.Roles = make(map[string]models.RoleRule, len(rules.Roles))
			for role, rule := range rules.Roles {
				normalized.Roles[strings.ToUpper(strings.TrimSpace(role))] = normalizeRoleRule(rule)
			}
		}
		out.Departments[strings.ToUpper(strings.TrimSpace(dept))] = normalized
	}
	return out
}

func normalizeRoleRule(in models.RoleRule) models.RoleRule {
	out := models.RoleRule{Default: upperAll(in.Default)}
	for _, override := range in.TimeOverrides {
		out.TimeOverrides = append(out.TimeOverrides, models.TimeOverride{
			StartHour:  override.StartHour,
			EndHour:    override.EndHour,
			Candidates: upperAll(override.Candidates),
		})
	}
	// Doctor override keys round-trip through NormalizeName so a
	// configured "Dr. Smith" matches a schedule row's "DR.SMITH".
	if len(in.DoctorOverrides) > 0 {
		out.DoctorOverrides = make(map[string][]string, len(in.DoctorOverrides))
		for key, names := range in.DoctorOverrides {
			out.DoctorOverrides[models.NormalizeName(key)] = upperAll(names)
		}
	}
	out.FirstAssistantOverrides = upperKeyed(in.FirstAssistantOverrides)
	return out
}

func normalizedNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := models.NormalizeName(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func upperAll(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.ToUpper(strings.TrimSpace(name))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func upperKeyed(in map[string][]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for key, names := range in {
		out[strings.ToUpper(strings.TrimSpace(key))] = upperAll(names)
	}
	return out
}
