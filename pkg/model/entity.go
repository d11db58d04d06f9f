package model

import "time"

// EntityStatus mirrors spec.md §3: an entity is active unless it has
// been archived in its entirety (every version removed or the entity
// itself soft-deleted).
type EntityStatus string

const (
	EntityActive   EntityStatus = "active"
	EntityArchived EntityStatus = "archived"
)

// VersionStatus is per-version, independent of EntityStatus.
type VersionStatus string

const (
	VersionActive   VersionStatus = "active"
	VersionInactive VersionStatus = "inactive"
	VersionArchived VersionStatus = "archived"
)

// Entity is a versioned record identified by project.slug (spec.md §3).
type Entity struct {
	Slug          string     `json:"slug"`
	Parent        string     `json:"parent,omitempty"`
	PathSegments  []string   `json:"path_segments"`
	ActiveVersion int        `json:"active_version,string"`
	Status        EntityStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Versions      []*Version `json:"versions"`
}

// Version is one immutable revision of an entity's payload (spec.md §3).
type Version struct {
	Version     int           `json:"version,string"`
	Status      VersionStatus `json:"status"`
	Hash        string        `json:"hash"`
	Commit      string        `json:"commit"`
	CommittedAt time.Time     `json:"committed_at"`
	Payload     Payload       `json:"payload"`
	Meta        Payload       `json:"meta,omitempty"`
}

// ActiveVersionOf returns the entity's active version, if any.
func (e *Entity) ActiveVersionOf() *Version {
	for _, v := range e.Versions {
		if v.Version == e.ActiveVersion && v.Status == VersionActive {
			return v
		}
	}
	return nil
}

// FindVersion returns the version with the given number, if present.
func (e *Entity) FindVersion(number int) *Version {
	for _, v := range e.Versions {
		if v.Version == number {
			return v
		}
	}
	return nil
}

// FindVersionByHash returns the version with the given commit hash, if
// it is still present in this entity's history.
func (e *Entity) FindVersionByHash(hash string) *Version {
	for _, v := range e.Versions {
		if v.Hash == hash {
			return v
		}
	}
	return nil
}
