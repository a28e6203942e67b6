// Package snapshot captures a mounted render tree and stores it.
//
// A Snapshot pairs the serialized HTML of the renderer's container with a
// YAML manifest describing the wrapper tree (kinds, component names, keys and
// instance ids). Snapshots are written to a Store: DirStore keeps them on the
// local filesystem and S3Store in a bucket.
//
//	snap, err := snapshot.Take(r)
//	if err != nil {
//	    return err
//	}
//	store, _ := snapshot.NewDirStore("snapshots")
//	err = store.Save(ctx, snap)
//
// Each snapshot is stored under its id as two objects, index.html and
// manifest.yaml.
package snapshot
