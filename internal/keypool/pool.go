// Package keypool resolves pools of generative-API credentials from the
// environment and invokes operations with sequential per-key fallback.
package keypool

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// EnvVarMasterKey is the environment variable for the shared fallback
// credential, used only when a pool has no numbered keys of its own.
const EnvVarMasterKey = "GEMINI_API_KEY"

// EnvPrefix is the application namespace for environment variables. A
// prefixed variable shadows its bare counterpart.
const EnvPrefix = "MENTOR_"

// minKeyLength filters out placeholder values. Real credentials are far
// longer; anything below this is a stub left in a shell profile.
const minKeyLength = 10

// Pool names understood by the resolver.
const (
	PoolText             = "text"
	PoolVoice            = "voice"
	PoolStructuredOutput = "structured-output"
)

// poolSizes caps how many numbered variables each pool reads.
var poolSizes = map[string]int{
	PoolText:             3,
	PoolVoice:            3,
	PoolStructuredOutput: 1,
}

// Lookup resolves an environment name to a value, "" when unset.
type Lookup func(name string) string

// EnvLookup reads the bare process environment.
func EnvLookup(name string) string {
	return os.Getenv(name)
}

// PrefixedEnvLookup returns a Lookup that reads the process environment
// under a namespace prefix.
func PrefixedEnvLookup(prefix string) Lookup {
	return func(name string) string {
		return os.Getenv(prefix + name)
	}
}

// DefaultLookups returns the standard resolution order:
//  1. MENTOR_-prefixed environment variable (application namespace)
//  2. Bare environment variable
func DefaultLookups() []Lookup {
	return []Lookup{PrefixedEnvLookup(EnvPrefix), EnvLookup}
}

// Pool is an ordered set of distinct credentials for one operation family.
type Pool struct {
	Name   string
	EnvVar string // numbered variable base, for diagnostics
	Keys   []string

	// Fallback is set when the pool resolved no numbered keys and Keys
	// holds the shared master credential instead.
	Fallback bool
}

// Pools holds every resolved pool. Resolve once at startup and pass the
// result around; it is immutable and safe for concurrent use.
type Pools struct {
	pools map[string]*Pool
}

// EnvVarForPool returns the base name of a pool's numbered variables,
// e.g. "GEMINI_API_KEY_STRUCTURED_OUTPUT" for pool "structured-output".
func EnvVarForPool(name string) string {
	return EnvVarMasterKey + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ResolvePools reads every pool through the given lookup chain; with no
// arguments it uses DefaultLookups. Per numbered slot the first non-empty
// lookup result wins, then blanks, implausibly short values, and
// duplicates are dropped in order. A pool with no usable numbered keys
// falls back to the master credential alone.
func ResolvePools(lookups ...Lookup) *Pools {
	if len(lookups) == 0 {
		lookups = DefaultLookups()
	}
	p := &Pools{pools: make(map[string]*Pool, len(poolSizes))}
	for name, size := range poolSizes {
		p.pools[name] = resolvePool(name, size, lookups)
	}
	return p
}

func resolvePool(name string, size int, lookups []Lookup) *Pool {
	pool := &Pool{Name: name, EnvVar: EnvVarForPool(name)}
	seen := make(map[string]bool)
	for i := 1; i <= size; i++ {
		key := lookupFirst(fmt.Sprintf("%s%d", pool.EnvVar, i), lookups)
		if !plausibleKey(key) || seen[key] {
			continue
		}
		seen[key] = true
		pool.Keys = append(pool.Keys, key)
	}

	// Master fallback only when the pool resolved nothing of its own.
	if len(pool.Keys) == 0 {
		if master := lookupFirst(EnvVarMasterKey, lookups); plausibleKey(master) {
			pool.Keys = []string{master}
			pool.Fallback = true
		}
	}
	return pool
}

func lookupFirst(name string, lookups []Lookup) string {
	for _, lookup := range lookups {
		if v := strings.TrimSpace(lookup(name)); v != "" {
			return v
		}
	}
	return ""
}

// plausibleKey rejects blank or obviously truncated values.
func plausibleKey(key string) bool {
	return len(key) >= minKeyLength
}

// Pool returns the named pool, nil when unknown.
func (p *Pools) Pool(name string) *Pool {
	return p.pools[name]
}

// PoolSize returns how many numbered variable slots a pool reads, zero
// for an unknown pool.
func PoolSize(name string) int {
	return poolSizes[name]
}

// Names returns the known pool names in stable order.
func (p *Pools) Names() []string {
	names := make([]string, 0, len(p.pools))
	for name := range p.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RedactKey returns a loggable fragment of a credential. Short keys are
// fully masked; longer ones keep only the trailing four characters.
func RedactKey(key string) string {
	if len(key) < 8 {
		return "****"
	}
	return "..." + key[len(key)-4:]
}
