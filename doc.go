// Package europepmc incrementally harvests open-access full-text articles from
// Europe PMC into a local SQLite ledger.
//
// This package implements:
//   - A client for the Europe PMC REST full-text service and the open-access
//     PMCID archive (a gzip list of identifiers)
//   - A cached, forward-only reader over the candidate identifier list
//   - Extraction of JATS section text (Introduction, Methods, Result,
//     Discussion), journal metadata and supplementary-material markup
//   - A GORM-backed ledger with insert-or-ignore semantics
//
// A run reads the candidate list, skips identifiers already in the ledger and
// captures the rest one by one. Every capture is committed on its own, so an
// interrupted harvest resumes from the first uncaptured identifier.
//
// Basic usage:
//
//	cfg, err := europepmc.LoadConfig("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ledger, err := europepmc.OpenLedger(cfg.SQL.DBFile, cfg.SQL.Driver)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ledger.Close()
//
//	h := europepmc.NewHarvester(cfg, europepmc.NewClient(cfg), ledger, europepmc.NewLogger("info"))
//	stats, err := h.Run(ctx, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(stats.Inserted, "articles captured")
package europepmc
