package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/formhive/formhive"
	"github.com/formhive/formhive/internal/domain"
)

type mockFormRepo struct {
	forms       map[uint]domain.Form
	nextID      uint
	deleted     []uint
	permissions map[uint][]domain.FormPermission
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{
		forms:       make(map[uint]domain.Form),
		nextID:      1,
		permissions: make(map[uint][]domain.FormPermission),
	}
}

func (m *mockFormRepo) Create(ctx context.Context, form domain.Form) (domain.Form, error) {
	form.ID = m.nextID
	m.nextID++
	m.forms[form.ID] = form
	return form, nil
}

func (m *mockFormRepo) Get(ctx context.Context, id uint) (domain.Form, error) {
	form, ok := m.forms[id]
	if !ok {
		return domain.Form{}, domain.NotFoundError{Resource: "form"}
	}
	return form, nil
}

func (m *mockFormRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.forms[id]; !ok {
		return domain.NotFoundError{Resource: "form"}
	}
	delete(m.forms, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockFormRepo) ListAvailable(ctx context.Context, userID uint, groupIDs []uint, search string, page, size int) ([]domain.Form, int64, error) {
	var result []domain.Form
	for _, form := range m.forms {
		if !form.Active {
			continue
		}
		if m.accessible(form, userID, groupIDs) {
			result = append(result, form)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockFormRepo) ExistsAccessible(ctx context.Context, formID, userID uint, groupIDs []uint) (bool, error) {
	form, ok := m.forms[formID]
	if !ok {
		return false, nil
	}
	return m.accessible(form, userID, groupIDs), nil
}

func (m *mockFormRepo) accessible(form domain.Form, userID uint, groupIDs []uint) bool {
	if form.OwnerID == userID {
		return true
	}
	if form.GroupID == nil {
		return false
	}
	for _, id := range groupIDs {
		if id == *form.GroupID {
			return true
		}
	}
	return false
}

func (m *mockFormRepo) ReplacePermissions(ctx context.Context, formID uint, perms []domain.FormPermission) error {
	m.permissions[formID] = perms
	return nil
}

func (m *mockFormRepo) GetPermissions(ctx context.Context, formID uint) ([]domain.FormPermission, error) {
	return m.permissions[formID], nil
}

type mockSubmissionRepo struct {
	subs   map[uint]domain.Submission
	nextID uint
	marked []uint
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{
		subs:   make(map[uint]domain.Submission),
		nextID: 1,
	}
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	sub.ID = m.nextID
	m.nextID++
	m.subs[sub.ID] = sub
	return sub, nil
}

func (m *mockSubmissionRepo) Update(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	if _, ok := m.subs[sub.ID]; !ok {
		return domain.Submission{}, domain.NotFoundError{Resource: "submission"}
	}
	m.subs[sub.ID] = sub
	return sub, nil
}

func (m *mockSubmissionRepo) Get(ctx context.Context, id uint) (domain.Submission, error) {
	sub, ok := m.subs[id]
	if !ok {
		return domain.Submission{}, domain.NotFoundError{Resource: "submission"}
	}
	return sub, nil
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.subs[id]; !ok {
		return domain.NotFoundError{Resource: "submission"}
	}
	delete(m.subs, id)
	return nil
}

func (m *mockSubmissionRepo) ListByForm(ctx context.Context, formID uint) ([]domain.Submission, error) {
	var result []domain.Submission
	for id := uint(1); id < m.nextID; id++ {
		if sub, ok := m.subs[id]; ok && sub.FormID == formID {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) ListByFormPaged(ctx context.Context, formID uint, status domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error) {
	var result []domain.Submission
	for id := uint(1); id < m.nextID; id++ {
		if sub, ok := m.subs[id]; ok && sub.FormID == formID && sub.Status == status {
			result = append(result, sub)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockSubmissionRepo) ListByUser(ctx context.Context, userID uint, status *domain.SubmissionStatus, page, size int) ([]domain.Submission, int64, error) {
	var result []domain.Submission
	for id := uint(1); id < m.nextID; id++ {
		sub, ok := m.subs[id]
		if !ok || sub.UserID != userID {
			continue
		}
		if status != nil && sub.Status != *status {
			continue
		}
		result = append(result, sub)
	}
	return result, int64(len(result)), nil
}

func (m *mockSubmissionRepo) CountByForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	for _, sub := range m.subs {
		if sub.FormID == formID {
			count++
		}
	}
	return count, nil
}

func (m *mockSubmissionRepo) MarkRemovedByOwner(ctx context.Context, formID, ownerID uint, at time.Time) (int64, error) {
	var count int64
	for id, sub := range m.subs {
		if sub.FormID == formID {
			sub.Status = domain.StatusRemovedByOwner
			sub.StatusChangedAt = at
			sub.StatusChangedByUserID = &ownerID
			m.subs[id] = sub
			count++
		}
	}
	m.marked = append(m.marked, formID)
	return count, nil
}

type mockGroupRepo struct {
	groups     map[uint]domain.Group
	nextID     uint
	members    map[uint][]uint // group id -> member user ids
	userGroups map[uint][]uint // user id -> group ids
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:     make(map[uint]domain.Group),
		nextID:     1,
		members:    make(map[uint][]uint),
		userGroups: make(map[uint][]uint),
	}
}

func (m *mockGroupRepo) Create(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error) {
	group.ID = m.nextID
	m.nextID++
	m.setMembers(&group, memberIDs)
	m.groups[group.ID] = group
	return group, nil
}

func (m *mockGroupRepo) Update(ctx context.Context, group domain.Group, memberIDs []uint) (domain.Group, error) {
	stored, ok := m.groups[group.ID]
	if !ok {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	stored.Name = group.Name
	stored.Description = group.Description
	if memberIDs != nil {
		m.setMembers(&stored, memberIDs)
	}
	m.groups[group.ID] = stored
	return stored, nil
}

func (m *mockGroupRepo) setMembers(group *domain.Group, memberIDs []uint) {
	m.members[group.ID] = memberIDs
	group.Members = nil
	for _, userID := range memberIDs {
		group.Members = append(group.Members, domain.GroupMember{UserID: userID})
	}
}

func (m *mockGroupRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.groups[id]; !ok {
		return domain.NotFoundError{Resource: "group"}
	}
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *mockGroupRepo) Get(ctx context.Context, id uint) (domain.Group, error) {
	group, ok := m.groups[id]
	if !ok {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	return group, nil
}

func (m *mockGroupRepo) ListOwned(ctx context.Context, userID uint) ([]domain.Group, error) {
	var result []domain.Group
	for _, group := range m.groups {
		if group.OwnerID == userID {
			result = append(result, group)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) ListForMember(ctx context.Context, userID uint) ([]domain.Group, error) {
	var result []domain.Group
	for id, group := range m.groups {
		for _, memberID := range m.members[id] {
			if memberID == userID {
				result = append(result, group)
				break
			}
		}
	}
	return result, nil
}

func (m *mockGroupRepo) GetUserGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	if ids, ok := m.userGroups[userID]; ok {
		return ids, nil
	}
	var ids []uint
	for groupID, memberIDs := range m.members {
		for _, memberID := range memberIDs {
			if memberID == userID {
				ids = append(ids, groupID)
				break
			}
		}
	}
	return ids, nil
}

func (m *mockGroupRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, group := range m.groups {
		if strings.EqualFold(group.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

type mockUserRepo struct {
	users  map[uint]domain.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[uint]domain.User),
		nextID: 1,
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) Get(ctx context.Context, id uint) (domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *mockUserRepo) Search(ctx context.Context, query string, page, size int) ([]domain.User, int64, error) {
	var result []domain.User
	for _, user := range m.users {
		result = append(result, user)
	}
	return result, int64(len(result)), nil
}

type mockPublisher struct {
	formDeleted        []domain.FormDeletedEvent
	submissionCreated  []formhive.Event
	failSubmitPublish  error
	failDeletedPublish error
}

func (m *mockPublisher) PublishFormDeleted(ctx context.Context, event domain.FormDeletedEvent) error {
	if m.failDeletedPublish != nil {
		return m.failDeletedPublish
	}
	m.formDeleted = append(m.formDeleted, event)
	return nil
}

func (m *mockPublisher) PublishSubmissionCreated(ctx context.Context, event formhive.Event) error {
	if m.failSubmitPublish != nil {
		return m.failSubmitPublish
	}
	m.submissionCreated = append(m.submissionCreated, event)
	return nil
}

type mockStructureCache struct {
	entries map[string]*formhive.FormStructure
	hits    int
	sets    int
}

func newMockStructureCache() *mockStructureCache {
	return &mockStructureCache{entries: make(map[string]*formhive.FormStructure)}
}

func (m *mockStructureCache) Get(key string) (*formhive.FormStructure, bool) {
	structure, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return structure, ok
}

func (m *mockStructureCache) Set(key string, structure *formhive.FormStructure) {
	m.sets++
	m.entries[key] = structure
}
