package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/arenakit"
)

var policyDescriptions = map[arenakit.Policy]string{
	arenakit.PolicyLinear:           "bump allocation, frees ignored, heap fallback",
	arenakit.PolicyLinearConcurrent: "lock-free bump allocation, heap fallback",
	arenakit.PolicyStack:            "LIFO with deferred out-of-order frees",
	arenakit.PolicyStackConcurrent:  "lock-free strict LIFO",
	arenakit.PolicyPool:             "single-element slots, intrusive free list",
	arenakit.PolicyPoolConcurrent:   "single-element slots, lock-free free list",
	arenakit.PolicyFreeList:         "variable size, first fit, coalescing",
}

type policyInfo struct {
	Name        string `json:"name"`
	Concurrent  bool   `json:"concurrent"`
	Description string `json:"description"`
}

func init() {
	rootCmd.AddCommand(newPoliciesCmd())
}

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List allocation policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicies()
		},
	}
}

func runPolicies() error {
	infos := make([]policyInfo, 0, len(arenakit.Policies()))
	for _, p := range arenakit.Policies() {
		infos = append(infos, policyInfo{
			Name:        p.String(),
			Concurrent:  p.Concurrent(),
			Description: policyDescriptions[p],
		})
	}

	if jsonOut {
		return printJSON(infos)
	}
	for _, info := range infos {
		mt := ""
		if info.Concurrent {
			mt = " (concurrent)"
		}
		printInfo("%-10s %s%s\n", info.Name, info.Description, mt)
	}
	return nil
}
