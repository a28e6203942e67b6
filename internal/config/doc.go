// Package config loads canopy.json.
//
// Values come from three layers, later layers winning: built-in defaults,
// the JSON file and CANOPY_ environment variables (CANOPY_DEV_PORT,
// CANOPY_RENDER_SYNC, CANOPY_SNAPSHOT_BUCKET and so on).
//
// # Configuration File Structure
//
//	{
//	  "render": {
//	    "sync": false,
//	    "merge": false,
//	    "debug": true,
//	    "batchSize": 25
//	  },
//	  "telemetry": {
//	    "metrics": true,
//	    "namespace": "canopy",
//	    "tracerName": "canopy"
//	  },
//	  "dev": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "bucket": "",
//	    "prefix": "snapshots/",
//	    "region": "us-east-1",
//	    "endpoint": ""
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := render.New(doc, root, cfg.RenderOptions()...)
package config
