package pipeline

import (
	"strings"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
)

// kindAliases are the lower-case spellings accepted for a kind in an
// override.
var kindAliases = map[string]string{
	"graph":       model.KindGraph,
	"generator":   model.KindGraph,
	"embedder":    model.KindEmbedder,
	"remodel":     model.KindRigid,
	"rigid":       model.KindRigid,
	"pathmanager": model.KindPathManager,
	"manager":     model.KindPathManager,
	"model":       model.KindModel,
}

// Override sets one parameter of the selected strategy of a kind.
type Override struct {
	Kind  string
	Param string
	Value string
}

// ParseOverride reads "Kind.Param=value". The kind is matched without
// regard to case and accepts the aliases generator, rigid and manager.
// Parameter names may contain dots; the first dot ends the kind.
func ParseOverride(s string) (Override, error) {
	lhs, value, ok := strings.Cut(s, "=")
	if !ok {
		return Override{}, errors.New(errors.ErrCodeInvalidArgument, "override %q: want Kind.Param=value", s)
	}
	kind, name, ok := strings.Cut(strings.TrimSpace(lhs), ".")
	if !ok || name == "" {
		return Override{}, errors.New(errors.ErrCodeInvalidArgument, "override %q: want Kind.Param=value", s)
	}
	canonical, ok := kindAliases[strings.ToLower(kind)]
	if !ok {
		return Override{}, errors.New(errors.ErrCodeInvalidArgument, "override %q: unknown kind %q", s, kind)
	}
	if err := errors.ValidateName(name); err != nil {
		return Override{}, err
	}
	return Override{Kind: canonical, Param: name, Value: strings.TrimSpace(value)}, nil
}

// String formats o as ParseOverride reads it.
func (o Override) String() string {
	return o.Kind + "." + o.Param + "=" + o.Value
}
