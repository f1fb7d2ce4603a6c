package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aigoflow/risk-reporter/pkg/client"
)

// projectionsCmd asks a responder which projections can be requested.
var projectionsCmd = &cobra.Command{
	Use:   "projections",
	Short: "List projections served by the risk responder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := client.NewNATSClient(client.Options{
			NatsURL:          cfg.NatsURL,
			ClientID:         cfg.ClientID,
			RequestSubject:   cfg.RequestSubject,
			DiscoverySubject: cfg.DiscoverySubject,
		})
		if err != nil {
			return err
		}
		defer cli.Close()

		catalog, err := cli.ListProjections(cmd.Context())
		if err != nil {
			return err
		}
		if len(catalog.Projections) == 0 {
			pterm.Warning.Printf("Responder %s serves no projections\n", catalog.Responder)
			return nil
		}

		items := make([]pterm.BulletListItem, 0, len(catalog.Projections))
		for _, name := range catalog.Projections {
			items = append(items, pterm.BulletListItem{Level: 0, Text: name})
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}
