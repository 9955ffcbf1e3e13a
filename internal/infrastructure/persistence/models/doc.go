// Package models holds the gorm persistence models. Each model converts to and
// from its domain aggregate so that domain packages stay free of storage tags.
package models
