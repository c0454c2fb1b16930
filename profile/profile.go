// Package profile builds behaviour trees from a declarative JSON document.
//
// A profile is a single behaviour node; behaviours and predicates are
// objects with a "kind" field plus kind-specific arguments. The profile is
// parsed once at startup and every configuration mistake (an unknown kind,
// proportions that cannot be satisfied, a path expression that does not
// compile) is surfaced eagerly as a parse error.
//
// The profile for failing thirty percent of POST requests:
//
//	{
//	  "kind": "random_choice",
//	  "entries": [
//	    {
//	      "proportion": 0.3,
//	      "behaviour": {
//	        "kind": "conditional",
//	        "predicate": {"kind": "method", "value": "POST"},
//	        "behaviour": {"kind": "server_error"}
//	      }
//	    },
//	    {"behaviour": {"kind": "pass"}}
//	  ]
//	}
package profile

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/abarto/uncertainty"
)

// Parse builds the behaviour tree described by the JSON document.
func Parse(doc []byte) (uncertainty.Behaviour, error) {
	if !gjson.ValidBytes(doc) {
		return nil, errors.New("profile is not valid JSON")
	}

	return parseBehaviour(gjson.ParseBytes(doc))
}

// ParseString is a convenience variant of [Parse].
func ParseString(doc string) (uncertainty.Behaviour, error) {
	return Parse([]byte(doc))
}

type behaviourParser func(gjson.Result) (uncertainty.Behaviour, error)

// Both tables are filled in init: the grammar is recursive, so an
// initialized package variable would form an initialization cycle.
var (
	behaviourParsers map[string]behaviourParser
	predicateParsers map[string]predicateParser
)

func init() {
	behaviourParsers = map[string]behaviourParser{
		"pass":              parsePass,
		"ok":                fixedParser(uncertainty.OK),
		"html":              fixedParser(uncertainty.OK),
		"bad_request":       fixedParser(uncertainty.BadRequest),
		"forbidden":         fixedParser(uncertainty.Forbidden),
		"not_found":         fixedParser(uncertainty.NotFound),
		"server_error":      fixedParser(uncertainty.ServerError),
		"not_allowed":       parseNotAllowed,
		"status":            parseStatus,
		"json":              parseJSON,
		"delay_request":     delayParser(uncertainty.DelayRequest),
		"delay_response":    delayParser(uncertainty.DelayResponse),
		"random_choice":     parseRandomChoice,
		"conditional":       parseConditional,
		"multi_conditional": parseMultiConditional,
		"slowdown":          parseSlowdown,
		"random_stop":       parseRandomStop,
	}

	predicateParsers = map[string]predicateParser{
		"always": func(gjson.Result) (uncertainty.Predicate, error) {
			return uncertainty.Always(), nil
		},
		"not":           parseNot,
		"and":           junctionParser(uncertainty.And),
		"or":            junctionParser(uncertainty.Or),
		"method":        parseMethod,
		"has_parameter": parseHasParameter,
		"path_matches":  parsePathMatches,
		"is_authenticated": func(gjson.Result) (uncertainty.Predicate, error) {
			return uncertainty.IsAuthenticated(), nil
		},
		"user_is": parseUserIs,
	}
}

func parseBehaviour(node gjson.Result) (uncertainty.Behaviour, error) {
	if !node.IsObject() {
		return nil, errors.Newf("behaviour node must be an object, got: %s", node.Type)
	}

	kind := node.Get("kind").String()

	parse, ok := behaviourParsers[kind]
	if !ok {
		return nil, errors.Newf("unknown behaviour kind %q, known kinds: %v",
			kind, lo.Keys(behaviourParsers))
	}

	b, err := parse(node)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q behaviour", kind)
	}

	return b, nil
}

func parsePass(gjson.Result) (uncertainty.Behaviour, error) {
	return uncertainty.PassThrough(), nil
}

// fixedParser adapts the body-taking response leaves, which all share the
// same optional "body" argument.
func fixedParser(leaf func(string, ...uncertainty.ResponseOption) uncertainty.Behaviour) behaviourParser {
	return func(node gjson.Result) (uncertainty.Behaviour, error) {
		return leaf(node.Get("body").String()), nil
	}
}

func parseNotAllowed(node gjson.Result) (uncertainty.Behaviour, error) {
	var allowed []string
	for _, m := range node.Get("allow").Array() {
		allowed = append(allowed, m.String())
	}

	return uncertainty.NotAllowed(allowed...), nil
}

func parseStatus(node gjson.Result) (uncertainty.Behaviour, error) {
	code := node.Get("code")
	if !code.Exists() {
		return nil, errors.New("missing status code")
	}

	return uncertainty.Status(int(code.Int()),
		uncertainty.WithBody(node.Get("body").String())), nil
}

func parseJSON(node gjson.Result) (uncertainty.Behaviour, error) {
	data := node.Get("data")
	if !data.Exists() {
		return nil, errors.New("missing data")
	}

	return uncertainty.JSON(data.Value()), nil
}

func delayParser(wrap func(uncertainty.Behaviour, time.Duration) uncertainty.Behaviour) behaviourParser {
	return func(node gjson.Result) (uncertainty.Behaviour, error) {
		d, err := seconds(node)
		if err != nil {
			return nil, err
		}

		inner := uncertainty.PassThrough()
		if b := node.Get("behaviour"); b.Exists() {
			if inner, err = parseBehaviour(b); err != nil {
				return nil, err
			}
		}

		return wrap(inner, d), nil
	}
}

func parseRandomChoice(node gjson.Result) (uncertainty.Behaviour, error) {
	var entries []uncertainty.Entry

	for i, e := range node.Get("entries").Array() {
		b, err := parseBehaviour(e.Get("behaviour"))
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}

		if p := e.Get("proportion"); p.Exists() {
			entries = append(entries, uncertainty.Weighted(b, p.Float()))
		} else {
			entries = append(entries, uncertainty.Unweighted(b))
		}
	}

	return uncertainty.RandomChoice(entries...)
}

func parseConditional(node gjson.Result) (uncertainty.Behaviour, error) {
	p, err := parsePredicate(node.Get("predicate"))
	if err != nil {
		return nil, err
	}

	then, err := parseBehaviour(node.Get("behaviour"))
	if err != nil {
		return nil, err
	}

	var otherwise uncertainty.Behaviour
	if alt := node.Get("else"); alt.Exists() {
		if otherwise, err = parseBehaviour(alt); err != nil {
			return nil, errors.Wrap(err, "else branch")
		}
	}

	return uncertainty.ConditionalElse(p, then, otherwise), nil
}

func parseMultiConditional(node gjson.Result) (uncertainty.Behaviour, error) {
	var cases []uncertainty.PredicateCase

	for i, c := range node.Get("cases").Array() {
		p, err := parsePredicate(c.Get("predicate"))
		if err != nil {
			return nil, errors.Wrapf(err, "case %d", i)
		}

		b, err := parseBehaviour(c.Get("behaviour"))
		if err != nil {
			return nil, errors.Wrapf(err, "case %d", i)
		}

		cases = append(cases, uncertainty.Case(p, b))
	}

	var fallback uncertainty.Behaviour

	if def := node.Get("default"); def.Exists() {
		b, err := parseBehaviour(def)
		if err != nil {
			return nil, errors.Wrap(err, "default branch")
		}

		fallback = b
	}

	return uncertainty.MultiConditional(cases, fallback), nil
}

func parseSlowdown(node gjson.Result) (uncertainty.Behaviour, error) {
	d, err := seconds(node)
	if err != nil {
		return nil, err
	}

	return uncertainty.Slowdown(d), nil
}

func parseRandomStop(node gjson.Result) (uncertainty.Behaviour, error) {
	p := node.Get("probability")
	if !p.Exists() {
		return nil, errors.New("missing probability")
	}

	return uncertainty.RandomStop(p.Float()), nil
}

func seconds(node gjson.Result) (time.Duration, error) {
	secs := node.Get("seconds")
	if !secs.Exists() {
		return 0, errors.New("missing seconds")
	}

	if secs.Float() < 0 {
		return 0, errors.Newf("negative seconds: %v", secs.Float())
	}

	return time.Duration(secs.Float() * float64(time.Second)), nil
}

type predicateParser func(gjson.Result) (uncertainty.Predicate, error)

func parsePredicate(node gjson.Result) (uncertainty.Predicate, error) {
	if !node.IsObject() {
		return nil, errors.Newf("predicate node must be an object, got: %s", node.Type)
	}

	kind := node.Get("kind").String()

	parse, ok := predicateParsers[kind]
	if !ok {
		return nil, errors.Newf("unknown predicate kind %q, known kinds: %v",
			kind, lo.Keys(predicateParsers))
	}

	p, err := parse(node)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q predicate", kind)
	}

	return p, nil
}

func parseNot(node gjson.Result) (uncertainty.Predicate, error) {
	p, err := parsePredicate(node.Get("predicate"))
	if err != nil {
		return nil, err
	}

	return uncertainty.Not(p), nil
}

func junctionParser(join func(...uncertainty.Predicate) uncertainty.Predicate) predicateParser {
	return func(node gjson.Result) (uncertainty.Predicate, error) {
		var ps []uncertainty.Predicate

		for i, n := range node.Get("predicates").Array() {
			p, err := parsePredicate(n)
			if err != nil {
				return nil, errors.Wrapf(err, "operand %d", i)
			}

			ps = append(ps, p)
		}

		if len(ps) == 0 {
			return nil, errors.New("missing predicates")
		}

		return join(ps...), nil
	}
}

func parseMethod(node gjson.Result) (uncertainty.Predicate, error) {
	value := node.Get("value")
	if !value.Exists() {
		return nil, errors.New("missing value")
	}

	return uncertainty.IsMethod(value.String()), nil
}

func parseHasParameter(node gjson.Result) (uncertainty.Predicate, error) {
	name := node.Get("name")
	if !name.Exists() {
		return nil, errors.New("missing name")
	}

	return uncertainty.HasParameter(name.String()), nil
}

func parsePathMatches(node gjson.Result) (uncertainty.Predicate, error) {
	pattern := node.Get("pattern")
	if !pattern.Exists() {
		return nil, errors.New("missing pattern")
	}

	return uncertainty.PathMatches(pattern.String())
}

func parseUserIs(node gjson.Result) (uncertainty.Predicate, error) {
	username := node.Get("username")
	if !username.Exists() {
		return nil, errors.New("missing username")
	}

	return uncertainty.IsUser(username.String()), nil
}
