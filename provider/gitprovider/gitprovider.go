// Package gitprovider materializes the standard git tables (refs,
// commits, branches, diffs, tags) from repositories using go-git.
package gitprovider

import (
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/gitql-go/gitql/object"
	"github.com/gitql-go/gitql/provider"
	"github.com/gitql-go/gitql/types"
	"github.com/gitql-go/gitql/value"
)

// schemas declares the standard tables and their columns in declaration
// order.
var schemas = map[string]provider.Schema{
	"refs": {
		Fields: []string{"name", "full_name", "type", "repo"},
		Types: map[string]types.DataType{
			"name":      types.Text,
			"full_name": types.Text,
			"type":      types.Text,
			"repo":      types.Text,
		},
	},
	"commits": {
		Fields: []string{"commit_id", "name", "email", "title", "message", "time", "repo"},
		Types: map[string]types.DataType{
			"commit_id": types.Text,
			"name":      types.Text,
			"email":     types.Text,
			"title":     types.Text,
			"message":   types.Text,
			"time":      types.Date,
			"repo":      types.Text,
		},
	},
	"branches": {
		Fields: []string{"name", "commit_count", "is_head", "is_remote", "repo"},
		Types: map[string]types.DataType{
			"name":         types.Text,
			"commit_count": types.Integer,
			"is_head":      types.Boolean,
			"is_remote":    types.Boolean,
			"repo":         types.Text,
		},
	},
	"diffs": {
		Fields: []string{"commit_id", "name", "email", "insertions", "deletions", "files_changed", "repo"},
		Types: map[string]types.DataType{
			"commit_id":     types.Text,
			"name":          types.Text,
			"email":         types.Text,
			"insertions":    types.Integer,
			"deletions":     types.Integer,
			"files_changed": types.Integer,
			"repo":          types.Text,
		},
	},
	"tags": {
		Fields: []string{"name", "repo"},
		Types: map[string]types.DataType{
			"name": types.Text,
			"repo": types.Text,
		},
	},
}

var tableNames = []string{"branches", "commits", "diffs", "refs", "tags"}

// repository is one opened repository plus the path it was opened from.
type repository struct {
	repo *git.Repository
	path string
}

// GitProvider serves the standard git tables from one or more
// repositories.
type GitProvider struct {
	repositories []repository
}

// Open opens the repositories at the given paths.
func Open(paths ...string) (*GitProvider, error) {
	p := &GitProvider{}
	for _, path := range paths {
		repo, err := git.PlainOpen(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open git repository at %q", path)
		}
		p.repositories = append(p.repositories, repository{repo: repo, path: path})
	}
	return p, nil
}

// Schema implements provider.Provider.
func (p *GitProvider) Schema(table string) (*provider.Schema, bool) {
	schema, ok := schemas[table]
	if !ok {
		return nil, false
	}
	return &schema, true
}

// TableNames implements provider.Provider.
func (p *GitProvider) TableNames() []string {
	return tableNames
}

// Fetch implements provider.Provider.
func (p *GitProvider) Fetch(table string, fields []string, aliases map[string]string) ([]string, []object.Row, error) {
	schema, ok := schemas[table]
	if !ok {
		return nil, nil, errors.Errorf("unknown table %q", table)
	}
	if len(fields) == 0 {
		fields = schema.Fields
	}
	for _, field := range fields {
		if _, ok := schema.Types[field]; !ok {
			return nil, nil, errors.Errorf("unknown field %q in table %q", field, table)
		}
	}

	var rows []object.Row
	for _, repo := range p.repositories {
		var repoRows []object.Row
		var err error
		switch table {
		case "refs":
			repoRows, err = selectReferences(repo, fields)
		case "commits":
			repoRows, err = selectCommits(repo, fields)
		case "branches":
			repoRows, err = selectBranches(repo, fields)
		case "diffs":
			repoRows, err = selectDiffs(repo, fields)
		case "tags":
			repoRows, err = selectTags(repo, fields)
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, repoRows...)
	}
	return provider.OutputTitles(fields, aliases), rows, nil
}

func contains(fields []string, name string) bool {
	for _, field := range fields {
		if field == name {
			return true
		}
	}
	return false
}

// buildRow assembles one positional row by asking get for each requested
// field.
func buildRow(fields []string, get func(field string) value.Value) object.Row {
	values := make([]value.Value, len(fields))
	for i, field := range fields {
		values[i] = get(field)
	}
	return object.Row{Values: values}
}

func selectReferences(r repository, fields []string) ([]object.Row, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrapf(err, "list references of %q", r.path)
	}
	defer refs.Close()

	var rows []object.Row
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		rows = append(rows, buildRow(fields, func(field string) value.Value {
			switch field {
			case "name":
				return value.Text(ref.Name().Short())
			case "full_name":
				return value.Text(ref.Name().String())
			case "type":
				return value.Text(referenceType(ref.Name()))
			case "repo":
				return value.Text(r.path)
			}
			return value.Null()
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk references of %q", r.path)
	}
	return rows, nil
}

func referenceType(name plumbing.ReferenceName) string {
	switch {
	case name.IsBranch():
		return "branch"
	case name.IsRemote():
		return "remote"
	case name.IsTag():
		return "tag"
	case name.IsNote():
		return "note"
	default:
		return "other"
	}
}

func selectCommits(r repository, fields []string) ([]object.Row, error) {
	log, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "walk commits of %q", r.path)
	}
	defer log.Close()

	var rows []object.Row
	err = log.ForEach(func(commit *gitobject.Commit) error {
		rows = append(rows, buildRow(fields, func(field string) value.Value {
			switch field {
			case "commit_id":
				return value.Text(commit.Hash.String())
			case "name":
				return value.Text(commit.Author.Name)
			case "email":
				return value.Text(commit.Author.Email)
			case "title":
				return value.Text(commitTitle(commit.Message))
			case "message":
				return value.Text(commit.Message)
			case "time":
				return value.Date(commit.Author.When.Unix())
			case "repo":
				return value.Text(r.path)
			}
			return value.Null()
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk commits of %q", r.path)
	}
	return rows, nil
}

func commitTitle(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}

func selectBranches(r repository, fields []string) ([]object.Row, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrapf(err, "list branches of %q", r.path)
	}
	defer refs.Close()

	var headName plumbing.ReferenceName
	if head, err := r.repo.Head(); err == nil {
		headName = head.Name()
	}

	wantCount := contains(fields, "commit_count")
	var rows []object.Row
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsBranch() && !ref.Name().IsRemote() {
			return nil
		}
		commitCount := int64(0)
		if wantCount {
			count, err := r.countCommits(ref.Hash())
			if err != nil {
				return err
			}
			commitCount = count
		}
		rows = append(rows, buildRow(fields, func(field string) value.Value {
			switch field {
			case "name":
				return value.Text(ref.Name().Short())
			case "commit_count":
				return value.Integer(commitCount)
			case "is_head":
				return value.Boolean(ref.Name() == headName)
			case "is_remote":
				return value.Boolean(ref.Name().IsRemote())
			case "repo":
				return value.Text(r.path)
			}
			return value.Null()
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk branches of %q", r.path)
	}
	return rows, nil
}

func (r repository) countCommits(from plumbing.Hash) (int64, error) {
	log, err := r.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return 0, errors.Wrapf(err, "count commits of %q", r.path)
	}
	defer log.Close()
	count := int64(0)
	err = log.ForEach(func(*gitobject.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "count commits of %q", r.path)
	}
	return count, nil
}

func selectDiffs(r repository, fields []string) ([]object.Row, error) {
	log, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "walk commits of %q", r.path)
	}
	defer log.Close()

	wantStats := contains(fields, "insertions") ||
		contains(fields, "deletions") ||
		contains(fields, "files_changed")

	var rows []object.Row
	err = log.ForEach(func(commit *gitobject.Commit) error {
		var insertions, deletions, filesChanged int64
		if wantStats {
			stats, err := commit.Stats()
			if err != nil {
				return errors.Wrapf(err, "diff stats of commit %s", commit.Hash)
			}
			filesChanged = int64(len(stats))
			for _, stat := range stats {
				insertions += int64(stat.Addition)
				deletions += int64(stat.Deletion)
			}
		}
		rows = append(rows, buildRow(fields, func(field string) value.Value {
			switch field {
			case "commit_id":
				return value.Text(commit.Hash.String())
			case "name":
				return value.Text(commit.Author.Name)
			case "email":
				return value.Text(commit.Author.Email)
			case "insertions":
				return value.Integer(insertions)
			case "deletions":
				return value.Integer(deletions)
			case "files_changed":
				return value.Integer(filesChanged)
			case "repo":
				return value.Text(r.path)
			}
			return value.Null()
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk diffs of %q", r.path)
	}
	return rows, nil
}

func selectTags(r repository, fields []string) ([]object.Row, error) {
	tags, err := r.repo.Tags()
	if err != nil {
		return nil, errors.Wrapf(err, "list tags of %q", r.path)
	}
	defer tags.Close()

	var rows []object.Row
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		rows = append(rows, buildRow(fields, func(field string) value.Value {
			switch field {
			case "name":
				return value.Text(ref.Name().Short())
			case "repo":
				return value.Text(r.path)
			}
			return value.Null()
		}))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk tags of %q", r.path)
	}
	return rows, nil
}
