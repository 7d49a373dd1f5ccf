package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	DisplayName  string
	Bio          string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Topic struct {
	Id        int
	Name      string
	RoomCount int
	CreatedAt time.Time
}

type Room struct {
	Id           int
	ExternalId   string
	Name         string
	Description  string
	HostId       int
	HostUsername string
	TopicId      int
	TopicName    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	Id             int
	RoomId         int
	RoomName       string
	RoomExternalId string
	UserId         int
	Username       string
	Body           string
	CreatedAt      time.Time
}

type CreateUserParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateUserParams struct {
	UserId       int
	Username     string
	EmailAddress string
	DisplayName  string
	Bio          string
	AvatarURL    string
}

type CreateRoomParams struct {
	Name        string
	Description string
	TopicId     int
	HostId      int
	ExternalId  string
}

type UpdateRoomParams struct {
	RoomId      int
	Name        string
	Description string
	TopicId     int
}

type CreateMessageParams struct {
	RoomId int
	UserId int
	Body   string
}
