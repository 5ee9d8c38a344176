package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type memberTestEnv struct {
	boardRepo      *MockBoardRepository
	userRepo       *MockUserRepository
	membershipRepo *MockMembershipRepository
}

func setupMemberTest(userID uuid.UUID) (*gin.Engine, *memberTestEnv) {
	env := &memberTestEnv{
		boardRepo:      new(MockBoardRepository),
		userRepo:       new(MockUserRepository),
		membershipRepo: new(MockMembershipRepository),
	}
	memberHandler := handler.NewMemberHandler(env.boardRepo, env.userRepo, env.membershipRepo, policy.NewEngine())

	r := authedRouter(userID)
	r.GET("/boards/:id/members", memberHandler.List)
	r.POST("/boards/:id/members", memberHandler.Add)
	r.DELETE("/boards/:id/members/:user_id", memberHandler.Remove)
	return r, env
}

func TestMemberAdd_OwnerSuccess(t *testing.T) {
	// Arrange
	ownerID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: ownerID}
	invitee := &model.User{
		ID:        uuid.New(),
		Email:     "invitee@example.com",
		Username:  "invitee@example.com",
		FirstName: "Invited",
		LastName:  "User",
	}
	router, env := setupMemberTest(ownerID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, ownerID).Return(true, nil)
	env.userRepo.On("FindByEmail", mock.Anything, "invitee@example.com").Return(invitee, nil)
	env.membershipRepo.On("AddMember", mock.Anything, board.ID, invitee.ID).Return(nil)

	reqBody := handler.AddMemberRequest{Email: "invitee@example.com"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/boards/"+board.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.MemberResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, invitee.ID.String(), response.UserID)
	assert.Equal(t, "Invited User", response.Name)
	assert.False(t, response.IsOwner)

	env.membershipRepo.AssertExpectations(t)
}

func TestMemberAdd_MemberForbidden(t *testing.T) {
	// Arrange: a regular member can see the board but not manage its roster.
	memberID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: uuid.New()}
	router, env := setupMemberTest(memberID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, memberID).Return(true, nil)

	reqBody := handler.AddMemberRequest{Email: "someone@example.com"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/boards/"+board.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, resp.Code)

	var response map[string]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Only the board owner can manage members", response["error"])

	env.membershipRepo.AssertNotCalled(t, "AddMember")
}

func TestMemberAdd_StrangerGetsNotFound(t *testing.T) {
	// Arrange
	strangerID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: uuid.New()}
	router, env := setupMemberTest(strangerID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, strangerID).Return(false, nil)

	reqBody := handler.AddMemberRequest{Email: "someone@example.com"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/boards/"+board.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env.membershipRepo.AssertNotCalled(t, "AddMember")
}

func TestMemberAdd_OwnerAsMemberRejected(t *testing.T) {
	// Arrange
	ownerID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: ownerID}
	owner := &model.User{ID: ownerID, Email: "owner@example.com", Username: "owner@example.com"}
	router, env := setupMemberTest(ownerID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, ownerID).Return(true, nil)
	env.userRepo.On("FindByEmail", mock.Anything, "owner@example.com").Return(owner, nil)

	reqBody := handler.AddMemberRequest{Email: "owner@example.com"}
	jsonBody, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest("POST", "/boards/"+board.ID.String()+"/members", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env.membershipRepo.AssertNotCalled(t, "AddMember")
}

func TestMemberRemove_OwnerSuccess(t *testing.T) {
	// Arrange
	ownerID := uuid.New()
	targetID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: ownerID}
	router, env := setupMemberTest(ownerID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, ownerID).Return(true, nil)
	env.membershipRepo.On("RemoveMember", mock.Anything, board.ID, targetID).Return(nil)

	req, _ := http.NewRequest("DELETE", "/boards/"+board.ID.String()+"/members/"+targetID.String(), nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusNoContent, resp.Code)

	env.membershipRepo.AssertExpectations(t)
}

func TestMemberList_OwnerFirst(t *testing.T) {
	// Arrange
	memberID := uuid.New()
	ownerID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Board", OwnerID: ownerID}
	owner := &model.User{ID: ownerID, Email: "owner@example.com", FirstName: "Board", LastName: "Owner"}
	members := []model.User{{ID: memberID, Email: "member@example.com", FirstName: "Plain", LastName: "Member"}}
	router, env := setupMemberTest(memberID)

	env.boardRepo.On("GetByID", mock.Anything, board.ID).Return(board, nil)
	env.membershipRepo.On("IsBoardAccessible", mock.Anything, board.ID, memberID).Return(true, nil)
	env.membershipRepo.On("ListMembers", mock.Anything, board.ID).Return(members, nil)
	env.userRepo.On("GetByID", mock.Anything, ownerID).Return(owner, nil)

	req, _ := http.NewRequest("GET", "/boards/"+board.ID.String()+"/members", nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response []handler.MemberResponse
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 2)
	assert.True(t, response[0].IsOwner)
	assert.Equal(t, ownerID.String(), response[0].UserID)
	assert.False(t, response[1].IsOwner)

	env.membershipRepo.AssertExpectations(t)
}
