package commands

import (
	"fmt"
)

// ClearStorage purges local storage keys starting with prefix, every key when
// prefix is empty. It lists what would go and asks unless yes is set.
func ClearStorage(env *Env, prefix string, yes bool) (int64, error) {
	keys, err := env.Storage.Keys(prefix)
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}
	if len(keys) == 0 {
		env.printf("Nothing to delete.\n")
		return 0, nil
	}

	if !yes {
		for _, k := range keys {
			env.printf("  %s\n", k)
		}
		if !env.confirm(fmt.Sprintf("Delete these %d key(s)?", len(keys))) {
			env.printf("Operation cancelled.\n")
			return 0, nil
		}
	}

	n, err := env.Storage.Purge(prefix)
	if err != nil {
		return 0, fmt.Errorf("purging storage: %w", err)
	}
	env.printf("Successfully deleted %d key(s)\n", n)
	return n, nil
}
