package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"notes-app/internal/domain"

	"github.com/go-kivik/kivik/v4"
	"github.com/go-kivik/kivik/v4/driver"
	"github.com/go-kivik/kivik/v4/mockdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDBName = "notes"

// statusError is what the CouchDB driver surfaces for non-2xx replies.
type statusError int

func (e statusError) Error() string   { return http.StatusText(int(e)) }
func (e statusError) HTTPStatus() int { return int(e) }

func newMockDB(t *testing.T) (*kivik.Client, *mockdb.Client, *mockdb.DB) {
	t.Helper()
	client, mock := mockdb.NewT(t)
	db := mock.NewDB()
	mock.ExpectDB().WithName(testDBName).WillReturn(db)
	return client, mock, db
}

// bookmarkedRows adds the Mango bookmark that mockdb rows do not carry.
type bookmarkedRows struct {
	driver.Rows
	bookmark string
}

func (r *bookmarkedRows) Bookmark() string { return r.bookmark }

func noteRow(id, ownerID, title string, createdAt time.Time) *driver.Row {
	doc := fmt.Sprintf(`{"_id":"note:%s","_rev":"1-a","doc_type":"note","owner_id":%q,"title":%q,"content":"","created_at":%q}`,
		id, ownerID, title, createdAt.Format(time.RFC3339))
	return &driver.Row{ID: notePrefix + id, Doc: strings.NewReader(doc)}
}

func TestUserRepository_Create(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", Email: "Alice@Example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}

	usernameClaim := map[string]interface{}{"_id": "username:alice", "doc_type": "claim", "user_id": "u1"}
	emailClaim := map[string]interface{}{"_id": "email:alice@example.com", "doc_type": "claim", "user_id": "u1"}

	tests := []struct {
		name         string
		expect       func(db *mockdb.DB)
		wantErr      error
		wantOtherErr bool
	}{
		{
			name: "success claims both names then writes the user",
			expect: func(db *mockdb.DB) {
				db.ExpectPut().WithDocID("username:alice").WithDoc(usernameClaim).WillReturn("1-u")
				db.ExpectPut().WithDocID("email:alice@example.com").WithDoc(emailClaim).WillReturn("1-e")
				db.ExpectPut().WithDocID("user:u1").WillReturn("1-x")
			},
		},
		{
			name: "username conflict",
			expect: func(db *mockdb.DB) {
				db.ExpectPut().WithDocID("username:alice").WillReturnError(statusError(http.StatusConflict))
			},
			wantErr: ErrUsernameTaken,
		},
		{
			name: "email conflict releases the username",
			expect: func(db *mockdb.DB) {
				db.ExpectPut().WithDocID("username:alice").WillReturn("1-u")
				db.ExpectPut().WithDocID("email:alice@example.com").WillReturnError(statusError(http.StatusConflict))
				db.ExpectDelete().WithDocID("username:alice").WillReturn("2-u")
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "user write failure releases both claims",
			expect: func(db *mockdb.DB) {
				db.ExpectPut().WithDocID("username:alice").WillReturn("1-u")
				db.ExpectPut().WithDocID("email:alice@example.com").WillReturn("1-e")
				db.ExpectPut().WithDocID("user:u1").WillReturnError(statusError(http.StatusInternalServerError))
				db.ExpectDelete().WithDocID("username:alice").WillReturn("2-u")
				db.ExpectDelete().WithDocID("email:alice@example.com").WillReturn("2-e")
			},
			wantOtherErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, db := newMockDB(t)
			repo := NewUserRepository(client, testDBName)
			tt.expect(db)

			err := repo.Create(context.Background(), user)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantOtherErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrUsernameTaken)
				assert.NotErrorIs(t, err, ErrEmailTaken)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmailFollowsClaim(t *testing.T) {
	client, mock, db := newMockDB(t)
	repo := NewUserRepository(client, testDBName)

	db.ExpectGet().WithDocID("email:alice@example.com").
		WillReturn(mockdb.DocumentT(t, `{"_id":"email:alice@example.com","_rev":"1-e","doc_type":"claim","user_id":"u1"}`))
	db.ExpectGet().WithDocID("user:u1").
		WillReturn(mockdb.DocumentT(t, `{"_id":"user:u1","_rev":"1-x","doc_type":"user","username":"alice","email":"Alice@Example.com","password_hash":"h","created_at":"2024-01-01T00:00:00Z"}`))

	user, err := repo.FindByEmail(context.Background(), " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindMissing(t *testing.T) {
	client, mock, db := newMockDB(t)
	repo := NewUserRepository(client, testDBName)

	db.ExpectGet().WithDocID("username:nobody").WillReturnError(statusError(http.StatusNotFound))

	_, err := repo.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Delete(t *testing.T) {
	const id = sessionPrefix + "abc"
	sessionJSON := `{"_id":"session:abc","_rev":"3-s","doc_type":"session","user_id":"u1"}`

	tests := []struct {
		name    string
		expect  func(t *testing.T, db *mockdb.DB)
		wantErr bool
	}{
		{
			name: "deletes the record",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturn(mockdb.DocumentT(t, sessionJSON))
				db.ExpectDelete().WithDocID(id).WillReturn("4-s")
			},
		},
		{
			name: "already gone",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturnError(statusError(http.StatusNotFound))
			},
		},
		{
			name: "removed between read and delete",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturn(mockdb.DocumentT(t, sessionJSON))
				db.ExpectDelete().WithDocID(id).WillReturnError(statusError(http.StatusNotFound))
			},
		},
		{
			name: "store failure",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturnError(statusError(http.StatusServiceUnavailable))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, db := newMockDB(t)
			repo := NewSessionRepository(client, testDBName)
			tt.expect(t, db)

			err := repo.Delete(context.Background(), "abc")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNoteRepository_ListByOwner(t *testing.T) {
	client, mock, db := newMockDB(t)
	repo := NewNoteRepository(client, testDBName)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.ExpectFind().
		WithQuery(map[string]interface{}{
			"selector": map[string]interface{}{"doc_type": "note", "owner_id": "u1"},
			"limit":    findPageSize,
		}).
		WillReturn(mockdb.NewRows().
			AddRow(noteRow("n3", "u1", "third", base.Add(2*time.Hour))).
			AddRow(noteRow("n1", "u1", "first", base)).
			AddRow(noteRow("n2", "u1", "second", base.Add(time.Hour))))

	notes, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"n1", "n2", "n3"}, []string{notes[0].ID, notes[1].ID, notes[2].ID})
	assert.Equal(t, "u1", notes[0].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_ListByOwnerFollowsBookmark(t *testing.T) {
	client, mock, db := newMockDB(t)
	repo := NewNoteRepository(client, testDBName).(*noteRepository)
	repo.pageSize = 2

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	selector := map[string]interface{}{"doc_type": "note", "owner_id": "u1"}

	db.ExpectFind().
		WithQuery(map[string]interface{}{"selector": selector, "limit": 2}).
		WillExecute(func(context.Context, interface{}, driver.Options) (driver.Rows, error) {
			rows := mockdb.NewRows().
				AddRow(noteRow("n2", "u1", "second", base.Add(time.Hour))).
				AddRow(noteRow("n3", "u1", "third", base.Add(2*time.Hour)))
			return &bookmarkedRows{Rows: rows.Final(), bookmark: "page-2"}, nil
		})
	db.ExpectFind().
		WithQuery(map[string]interface{}{"selector": selector, "limit": 2, "bookmark": "page-2"}).
		WillExecute(func(context.Context, interface{}, driver.Options) (driver.Rows, error) {
			rows := mockdb.NewRows().AddRow(noteRow("n1", "u1", "first", base))
			return &bookmarkedRows{Rows: rows.Final(), bookmark: "page-3"}, nil
		})

	notes, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"n1", "n2", "n3"}, []string{notes[0].ID, notes[1].ID, notes[2].ID})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_ListByOwnerStopsOnRepeatedBookmark(t *testing.T) {
	client, mock, db := newMockDB(t)
	repo := NewNoteRepository(client, testDBName).(*noteRepository)
	repo.pageSize = 1

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	selector := map[string]interface{}{"doc_type": "note", "owner_id": "u1"}

	db.ExpectFind().
		WithQuery(map[string]interface{}{"selector": selector, "limit": 1}).
		WillExecute(func(context.Context, interface{}, driver.Options) (driver.Rows, error) {
			rows := mockdb.NewRows().AddRow(noteRow("n1", "u1", "first", base))
			return &bookmarkedRows{Rows: rows.Final(), bookmark: "same"}, nil
		})
	db.ExpectFind().
		WithQuery(map[string]interface{}{"selector": selector, "limit": 1, "bookmark": "same"}).
		WillExecute(func(context.Context, interface{}, driver.Options) (driver.Rows, error) {
			rows := mockdb.NewRows().AddRow(noteRow("n2", "u1", "second", base.Add(time.Hour)))
			return &bookmarkedRows{Rows: rows.Final(), bookmark: "same"}, nil
		})

	notes, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_Conflicts(t *testing.T) {
	const id = notePrefix + "n1"
	noteJSON := `{"_id":"note:n1","_rev":"1-a","doc_type":"note","owner_id":"u1","title":"t","content":"c","created_at":"2024-01-01T00:00:00Z"}`

	tests := []struct {
		name    string
		expect  func(t *testing.T, db *mockdb.DB)
		call    func(repo NoteRepository) error
		wantErr error
	}{
		{
			name: "update loses the race",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturn(mockdb.DocumentT(t, noteJSON))
				db.ExpectPut().WithDocID(id).WillReturnError(statusError(http.StatusConflict))
			},
			call: func(repo NoteRepository) error {
				return repo.Update(context.Background(), &domain.Note{ID: "n1", Title: "new"})
			},
			wantErr: ErrConflict,
		},
		{
			name: "delete loses the race",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturn(mockdb.DocumentT(t, noteJSON))
				db.ExpectDelete().WithDocID(id).WillReturnError(statusError(http.StatusConflict))
			},
			call: func(repo NoteRepository) error {
				return repo.Delete(context.Background(), "n1")
			},
			wantErr: ErrConflict,
		},
		{
			name: "update of a missing note",
			expect: func(t *testing.T, db *mockdb.DB) {
				db.ExpectGet().WithDocID(id).WillReturnError(statusError(http.StatusNotFound))
			},
			call: func(repo NoteRepository) error {
				return repo.Update(context.Background(), &domain.Note{ID: "n1"})
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, db := newMockDB(t)
			repo := NewNoteRepository(client, testDBName)
			tt.expect(t, db)

			assert.ErrorIs(t, tt.call(repo), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
