package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/platform-mesh/oauth-relation/internal/relationdata"
	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

var relateCmd = &cobra.Command{
	Use:   "relate RELATION_ID",
	Short: "Establish or remove the partitions of a relation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error { // coverage-ignore
		relationID := args[0]
		if relationID == "" {
			return errors.New("relation id must not be empty")
		}

		clt, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
		if err != nil {
			log.Error().Err(err).Msg("unable to create client")
			return err
		}

		names := []string{relateCfg.Relation.Name}
		if !relateCfg.Relation.EndpointsDisabled {
			names = append(names, relateCfg.Relation.EndpointsName)
		}

		for _, name := range names {
			channel := relationdata.NewConfigMapChannel(clt, relateCfg.Relation.Namespace, name, relation.SideRequirer)
			relLog := log.ChildLogger("relation", name).ChildLogger("relationId", relationID)

			if relateCfg.Remove {
				if err := channel.Remove(cmd.Context(), relationID); err != nil {
					relLog.Error().Err(err).Msg("unable to remove relation")
					return err
				}
				relLog.Info().Msg("Relation removed")
				continue
			}

			if err := channel.Establish(cmd.Context(), relationID); err != nil {
				relLog.Error().Err(err).Msg("unable to establish relation")
				return err
			}
			relLog.Info().Msg("Relation established")
		}
		return nil
	},
}
