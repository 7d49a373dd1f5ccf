package database

import (
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) UpdateUser(params UpdateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserById(userId int) (User, error) {
	args := m.Called(userId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetUserByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetOrCreateTopic(name string) (Topic, error) {
	args := m.Called(name)
	return args.Get(0).(Topic), args.Error(1)
}
func (m *MockRepository) ListTopics(limit int) ([]Topic, error) {
	args := m.Called(limit)
	return args.Get(0).([]Topic), args.Error(1)
}
func (m *MockRepository) SearchTopics(query string) ([]Topic, error) {
	args := m.Called(query)
	return args.Get(0).([]Topic), args.Error(1)
}
func (m *MockRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) UpdateRoom(params UpdateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) DeleteRoom(roomId int) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) GetRoomsByHost(userId int) ([]Room, error) {
	args := m.Called(userId)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRepository) SearchRooms(query string) ([]Room, error) {
	args := m.Called(query)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRepository) SearchMessagesByTopic(query string) ([]Message, error) {
	args := m.Called(query)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) DeleteMessage(messageId int) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockRepository) GetMessageById(messageId int) (Message, error) {
	args := m.Called(messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) GetMessagesByRoom(roomId int) ([]Message, error) {
	args := m.Called(roomId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) GetMessagesByUser(userId int) ([]Message, error) {
	args := m.Called(userId)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) ListMessages() ([]Message, error) {
	args := m.Called()
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockRepository) GetParticipants(roomId int) ([]User, error) {
	args := m.Called(roomId)
	return args.Get(0).([]User), args.Error(1)
}
