package staff

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*Member
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Member)}
}

func (m *mockRepo) Create(_ context.Context, member *Member) error {
	member.ID = uuid.New()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	m.items[member.ID] = member
	return nil
}

func (m *mockRepo) List(_ context.Context, providerID uuid.UUID) ([]*Member, error) {
	var result []*Member
	for _, member := range m.items {
		if member.ProviderID == providerID {
			result = append(result, member)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Role != result[j].Role {
			return result[i].Role < result[j].Role
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

func seedMember(t *testing.T, svc *Service, providerID uuid.UUID, name, role string) *Member {
	t.Helper()
	m := &Member{
		ProviderID: providerID,
		FullName:   name,
		Email:      name + "@clinic.example",
		Role:       role,
	}
	if err := svc.Create(context.Background(), m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func TestCreate_Validates(t *testing.T) {
	svc := NewService(newMockRepo())
	providerID := uuid.New()

	cases := []struct {
		name   string
		member Member
	}{
		{"empty name", Member{ProviderID: providerID, Email: "a@b.c", Role: "nurse"}},
		{"bad email", Member{ProviderID: providerID, FullName: "Ana", Email: "not-an-email", Role: "nurse"}},
		{"bad role", Member{ProviderID: providerID, FullName: "Ana", Email: "a@b.c", Role: "janitor"}},
		{"score out of range", Member{ProviderID: providerID, FullName: "Ana", Email: "a@b.c", Role: "nurse", ActivityScore: 101}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), &tc.member); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreate_DefaultsPermissionsToEmpty(t *testing.T) {
	svc := NewService(newMockRepo())
	m := seedMember(t, svc, uuid.New(), "Nina", "nurse")
	if m.Permissions == nil {
		t.Fatal("want empty permissions slice, got nil")
	}
}

func TestList_OrderedByRoleThenName(t *testing.T) {
	svc := NewService(newMockRepo())
	providerID := uuid.New()
	seedMember(t, svc, providerID, "Zoe", "doctor")
	seedMember(t, svc, providerID, "Aldo", "nurse")
	seedMember(t, svc, providerID, "Abel", "doctor")
	seedMember(t, svc, uuid.New(), "Outsider", "admin")

	members, err := svc.List(context.Background(), providerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Abel", "Zoe", "Aldo"}
	if len(members) != len(want) {
		t.Fatalf("want %d members, got %d", len(want), len(members))
	}
	for i, name := range want {
		if members[i].FullName != name {
			t.Fatalf("position %d: want %s, got %s", i, name, members[i].FullName)
		}
	}
}

func TestList_EmptyNotNil(t *testing.T) {
	svc := NewService(newMockRepo())
	members, err := svc.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if members == nil {
		t.Fatal("want empty slice, got nil")
	}
}
