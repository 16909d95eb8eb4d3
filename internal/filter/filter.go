package filter

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
)

// ErrInvalidExpression is returned for expressions that fail to parse,
// type-check, or do not produce a bool.
var ErrInvalidExpression = errors.New("invalid filter expression")

// Predicate is a compiled filter. The zero value matches everything.
type Predicate struct {
	expr string
	prog cel.Program
}

// Expr returns the source expression.
func (p Predicate) Expr() string { return p.expr }

// Match evaluates the predicate. Evaluation errors count as no match.
func (p Predicate) Match(channel string, state any) bool {
	if p.prog == nil {
		return true
	}
	out, _, err := p.prog.Eval(map[string]any{
		"channel": channel,
		"state":   state,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Compiler builds predicates against a shared CEL environment.
type Compiler struct {
	env   *cel.Env
	cache *expirable.LRU[string, Predicate]
}

// NewCompiler returns a compiler caching up to size programs for ttl.
// A zero ttl keeps entries until evicted by size.
func NewCompiler(size int, ttl time.Duration) (*Compiler, error) {
	if size <= 0 {
		size = 128
	}
	env, err := cel.NewEnv(
		cel.Variable("state", cel.DynType),
		cel.Variable("channel", cel.StringType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "build cel env")
	}
	return &Compiler{
		env:   env,
		cache: expirable.NewLRU[string, Predicate](size, nil, ttl),
	}, nil
}

// Compile returns the predicate for expr, reusing a cached program when one
// exists. A blank expression yields a predicate that matches everything.
func (c *Compiler) Compile(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Predicate{}, nil
	}
	if p, ok := c.cache.Get(expr); ok {
		return p, nil
	}
	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Predicate{}, errors.Wrapf(ErrInvalidExpression, "%q: %v", expr, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return Predicate{}, errors.Wrapf(ErrInvalidExpression, "%q: result is %v, want bool", expr, out)
	}
	prog, err := c.env.Program(ast)
	if err != nil {
		return Predicate{}, errors.Wrapf(ErrInvalidExpression, "%q: %v", expr, err)
	}
	p := Predicate{expr: expr, prog: prog}
	c.cache.Add(expr, p)
	return p, nil
}

// Cached reports how many compiled programs are held.
func (c *Compiler) Cached() int { return c.cache.Len() }
