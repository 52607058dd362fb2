// Package catalog collects the devices of many conditional documents.
//
// A Catalog loads documents through a parser.Loader, expands each into its
// device population and indexes the devices by part name. Loading and
// resolution run in parallel with a bounded number of workers; a document
// or device that fails does not stop the others.
//
//	cat := catalog.New(parser.NewParser(), catalog.WithWorkers(8))
//	if err := cat.Load(ctx, "devices/"); err != nil {
//	    // some documents failed, the rest are usable
//	}
//	dev, err := cat.Lookup("stm32f407vgt6")
//
// Every step is reported to the configured pkg/log event logger under the
// catalog's session ID.
package catalog
