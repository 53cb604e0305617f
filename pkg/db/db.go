package db

import "github.com/asdine/storm"

// DB is the process-wide storm handle. It is opened in main before any
// handler runs and closed on shutdown.
var DB *storm.DB
