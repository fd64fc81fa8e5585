package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mentorkit/mentor/internal/keypool"
	"github.com/mentorkit/mentor/internal/style"
)

var keysCmd = &cobra.Command{
	Use:     "keys",
	GroupID: GroupSetup,
	Short:   "Show which API key pools are configured",
	Long: `Show how many API keys each pool resolved from the environment.

Pools and their variables:
  text               GEMINI_API_KEY_TEXT1..3        chat and ask
  voice              GEMINI_API_KEY_VOICE1..3       reserved for narration
  structured-output  GEMINI_API_KEY_STRUCTURED_OUTPUT1   course outlines

Every variable can also be set with a MENTOR_ prefix, which takes
precedence. A pool with no numbered keys falls back to the shared
GEMINI_API_KEY. Key values are never printed in full.`,
	Args: cobra.NoArgs,
	RunE: runKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	pools := keypool.ResolvePools()

	configured := 0
	for _, name := range pools.Names() {
		pool := pools.Pool(name)
		switch {
		case len(pool.Keys) == 0:
			fmt.Printf("%s %s: no keys\n", style.ErrorPrefix, name)
			fmt.Printf("  %s\n", style.Dim.Render(fmt.Sprintf("set %s1 or %s", pool.EnvVar, keypool.EnvVarMasterKey)))
		case pool.Fallback:
			configured++
			fmt.Printf("%s %s: shared %s (%s)\n", style.SuccessPrefix, name, keypool.EnvVarMasterKey, keypool.RedactKey(pool.Keys[0]))
		default:
			configured++
			fmt.Printf("%s %s: %d of %d keys (%s)\n", style.SuccessPrefix, name, len(pool.Keys), keypool.PoolSize(name), redactedList(pool.Keys))
		}
	}

	if configured == 0 {
		return fmt.Errorf("no API keys configured; set %s to get started", keypool.EnvVarMasterKey)
	}
	return nil
}

func redactedList(keys []string) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = keypool.RedactKey(key)
	}
	return strings.Join(parts, ", ")
}
