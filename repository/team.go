package repository

import (
	"context"
	"errors"
	"time"

	"checklistapp/model"
	"checklistapp/store"

	"github.com/golang/glog"
)

type teamCodec struct{}

func (teamCodec) Key(t model.Team) string { return t.UID }

func (teamCodec) WithKey(t model.Team, id string) model.Team {
	t.UID = id
	return t
}

func (teamCodec) Decode(doc store.Document) (model.Team, error) {
	r := newReader(store.CollectionTeams, doc)
	t := model.Team{
		UID:         doc.ID,
		Name:        r.str("name", true),
		Description: r.str("description", false),
		ManagerUID:  r.str("managerUID", false),
		MemberUIDs:  r.strings("memberUIDs"),
		CreatedAt:   r.timestamp("createdAt", false),
	}
	if r.err != nil {
		return model.Team{}, r.err
	}
	return t, nil
}

func (teamCodec) Encode(t model.Team) map[string]interface{} {
	members := t.MemberUIDs
	if members == nil {
		members = []string{}
	}
	return map[string]interface{}{
		"name":        t.Name,
		"description": t.Description,
		"managerUID":  t.ManagerUID,
		"memberUIDs":  members,
		"createdAt":   t.CreatedAt,
	}
}

// TeamRepository keeps each member's teamUIDs in step with team membership.
type TeamRepository struct {
	*Repository[model.Team]
	now func() time.Time
}

func NewTeamRepository(s store.Store) *TeamRepository {
	return &TeamRepository{
		Repository: New[model.Team](s, store.CollectionTeams, teamCodec{}),
		now:        time.Now,
	}
}

func ValidateTeam(t model.Team) error {
	fields := fieldErrors{}
	validateStruct(t, fields)
	return fields.err()
}

func validateMembers(members []string, fields fieldErrors) {
	validateStruct(struct {
		MemberUIDs []string `validate:"min=2,unique,dive,required"`
	}{members}, fields)
}

func (r *TeamRepository) Create(ctx context.Context, t model.Team) (model.Team, error) {
	t.UID = ""
	t.MemberUIDs = append([]string(nil), t.MemberUIDs...)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	if err := ValidateTeam(t); err != nil {
		return model.Team{}, err
	}
	created, err := r.create(ctx, t)
	if err != nil {
		return model.Team{}, err
	}
	r.link(ctx, created.UID, created.MemberUIDs)
	return created, nil
}

// Update replaces the given fields. A new member set is written whole and
// the users that joined or left are updated afterwards.
func (r *TeamRepository) Update(ctx context.Context, id string, patch model.TeamPatch) error {
	fields := map[string]interface{}{}
	problems := fieldErrors{}
	if patch.Name != nil {
		if *patch.Name == "" {
			problems.add("Name", "is required")
		}
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	var before model.Team
	if patch.MemberUIDs != nil {
		validateMembers(*patch.MemberUIDs, problems)
		fields["memberUIDs"] = append([]string{}, *patch.MemberUIDs...)
	}
	if err := problems.err(); err != nil {
		return err
	}
	if patch.MemberUIDs != nil {
		var err error
		if before, err = r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	if err := r.update(ctx, id, fields); err != nil {
		return err
	}
	if patch.MemberUIDs != nil {
		joined, left := diffMembers(before.MemberUIDs, *patch.MemberUIDs)
		r.link(ctx, id, joined)
		r.unlink(ctx, id, left)
	}
	return nil
}

// Delete removes the team and drops it from its members. Tasks assigned to
// the team are left in place.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	team, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.unlink(ctx, id, team.MemberUIDs)
	return nil
}

func (r *TeamRepository) GetByManager(ctx context.Context, managerUID string) ([]model.Team, error) {
	return r.GetByPredicate(ctx, func(t model.Team) bool {
		return t.ManagerUID == managerUID
	})
}

func (r *TeamRepository) GetByMember(ctx context.Context, userUID string) ([]model.Team, error) {
	return r.GetByPredicate(ctx, func(t model.Team) bool {
		return t.HasMember(userUID)
	})
}

// link and unlink are best effort: the team write already succeeded and a
// member without a users document is skipped.
func (r *TeamRepository) link(ctx context.Context, teamID string, users []string) {
	for _, uid := range users {
		err := r.store.ArrayAppend(ctx, store.CollectionUsers, uid, "teamUIDs", teamID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			glog.Infof("[team]link %s to %s: %s\n", uid, teamID, err)
		}
	}
}

func (r *TeamRepository) unlink(ctx context.Context, teamID string, users []string) {
	for _, uid := range users {
		err := r.store.ArrayRemove(ctx, store.CollectionUsers, uid, "teamUIDs", teamID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			glog.Infof("[team]unlink %s from %s: %s\n", uid, teamID, err)
		}
	}
}

func diffMembers(before, after []string) (joined, left []string) {
	was := make(map[string]bool, len(before))
	for _, uid := range before {
		was[uid] = true
	}
	is := make(map[string]bool, len(after))
	for _, uid := range after {
		is[uid] = true
		if !was[uid] {
			joined = append(joined, uid)
		}
	}
	for _, uid := range before {
		if !is[uid] {
			left = append(left, uid)
		}
	}
	return joined, left
}
