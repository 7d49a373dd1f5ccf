package database

type Repository interface {
	Ping() error
	CreateUser(params CreateUserParams) (User, error)
	UpdateUser(params UpdateUserParams) (User, error)
	GetUserById(userId int) (User, error)
	GetUserByUsername(username string) (User, error)
	GetOrCreateTopic(name string) (Topic, error)
	ListTopics(limit int) ([]Topic, error)
	SearchTopics(query string) ([]Topic, error)
	CreateRoom(params CreateRoomParams) (Room, error)
	UpdateRoom(params UpdateRoomParams) (Room, error)
	DeleteRoom(roomId int) error
	GetRoomByExternalId(externalId string) (Room, error)
	GetRoomsByHost(userId int) ([]Room, error)
	SearchRooms(query string) ([]Room, error)
	SearchMessagesByTopic(query string) ([]Message, error)
	CreateMessage(params CreateMessageParams) (Message, error)
	DeleteMessage(messageId int) error
	GetMessageById(messageId int) (Message, error)
	GetMessagesByRoom(roomId int) ([]Message, error)
	GetMessagesByUser(userId int) ([]Message, error)
	ListMessages() ([]Message, error)
	GetParticipants(roomId int) ([]User, error)
}
