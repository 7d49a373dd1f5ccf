package database

import (
	"fmt"
	"strings"
	"time"
)

const (
	roomColumns = "r.id, r.external_id, r.name, r.description, r.host_id, u.username, " +
		"r.topic_id, t.name, r.created_at, r.updated_at"
	roomJoins = "FROM rooms r " +
		"JOIN users u ON u.id = r.host_id " +
		"JOIN topics t ON t.id = r.topic_id"
	messageColumns = "m.id, m.room_id, r.name, r.external_id, m.user_id, u.username, m.body, m.created_at"
	messageJoins   = "FROM messages m " +
		"JOIN rooms r ON r.id = m.room_id " +
		"JOIN users u ON u.id = m.user_id"
	addParticipantQuery = "INSERT INTO room_participants (room_id, user_id, created_at) " +
		"VALUES ($1, $2, $3) ON CONFLICT DO NOTHING"
)

// searchPattern turns raw user input into an ILIKE pattern, escaping the
// wildcard characters so they match literally.
func searchPattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

func (db *PgRepository) CreateUser(params CreateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, wrapWriteErr(err)
}

func (db *PgRepository) UpdateUser(params UpdateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE users SET username = $2, email = $3, display_name = $4, bio = $5, avatar_url = $6, updated_at = $7 "+
			"WHERE id = $1 RETURNING id, username, email, display_name, bio, avatar_url",
		params.UserId,
		params.Username,
		params.EmailAddress,
		params.DisplayName,
		params.Bio,
		params.AvatarURL,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.DisplayName,
		&u.Bio,
		&u.AvatarURL,
	)
	if err != nil {
		return User{}, wrapWriteErr(wrapLookupErr(err))
	}

	return u, nil
}

func (db *PgRepository) GetUserById(userId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, display_name, bio, avatar_url, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		userId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.DisplayName,
		&user.Bio,
		&user.AvatarURL,
		&user.CreatedAt,
	)

	return user, wrapLookupErr(err)
}

func (db *PgRepository) GetUserByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, display_name, bio, avatar_url FROM users "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Bio,
		&user.AvatarURL,
	)

	return user, wrapLookupErr(err)
}

// GetOrCreateTopic returns the topic with the given name, creating it if
// it does not exist yet. The no-op DO UPDATE makes the insert return the
// existing row on conflict.
func (db *PgRepository) GetOrCreateTopic(name string) (Topic, error) {
	row := db.conn.QueryRow(
		"INSERT INTO topics (name, created_at) VALUES ($1, $2) "+
			"ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name "+
			"RETURNING id, name, created_at",
		name,
		time.Now().UTC(),
	)

	var topic Topic
	err := row.Scan(
		&topic.Id,
		&topic.Name,
		&topic.CreatedAt,
	)

	return topic, err
}

func (db *PgRepository) ListTopics(limit int) ([]Topic, error) {
	rows, err := db.conn.Query(
		"SELECT t.id, t.name, COUNT(r.id) FROM topics t "+
			"LEFT JOIN rooms r ON r.topic_id = t.id "+
			"GROUP BY t.id, t.name ORDER BY COUNT(r.id) DESC, t.name LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var topic Topic
		if err = rows.Scan(&topic.Id, &topic.Name, &topic.RoomCount); err != nil {
			return nil, err
		}

		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (db *PgRepository) SearchTopics(query string) ([]Topic, error) {
	rows, err := db.conn.Query(
		"SELECT t.id, t.name, COUNT(r.id) FROM topics t "+
			"LEFT JOIN rooms r ON r.topic_id = t.id "+
			"WHERE t.name ILIKE $1 "+
			"GROUP BY t.id, t.name ORDER BY COUNT(r.id) DESC, t.name",
		searchPattern(query),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var topic Topic
		if err = rows.Scan(&topic.Id, &topic.Name, &topic.RoomCount); err != nil {
			return nil, err
		}

		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (db *PgRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rooms (external_id, name, description, host_id, topic_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $6) "+
			"RETURNING id, external_id, name, description, host_id, topic_id, created_at, updated_at",
		params.ExternalId,
		params.Name,
		params.Description,
		params.HostId,
		params.TopicId,
		time.Now().UTC(),
	)

	var room Room
	err := res.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.Description,
		&room.HostId,
		&room.TopicId,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, wrapWriteErr(err)
}

func (db *PgRepository) UpdateRoom(params UpdateRoomParams) (Room, error) {
	res := db.conn.QueryRow(
		"UPDATE rooms SET name = $2, description = $3, topic_id = $4, updated_at = $5 "+
			"WHERE id = $1 RETURNING id, external_id, name, description, host_id, topic_id, updated_at",
		params.RoomId,
		params.Name,
		params.Description,
		params.TopicId,
		time.Now().UTC(),
	)

	var room Room
	err := res.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.Description,
		&room.HostId,
		&room.TopicId,
		&room.UpdatedAt,
	)

	return room, wrapLookupErr(err)
}

// DeleteRoom removes a room together with its messages and participant
// rows. All three deletes commit or roll back as one transaction.
func (db *PgRepository) DeleteRoom(roomId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM room_participants WHERE room_id = $1", roomId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM messages WHERE room_id = $1", roomId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM rooms WHERE id = $1", roomId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		fmt.Sprintf("SELECT %s %s WHERE r.external_id = $1 LIMIT 1", roomColumns, roomJoins),
		externalId,
	)

	var room Room
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.Description,
		&room.HostId,
		&room.HostUsername,
		&room.TopicId,
		&room.TopicName,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, wrapLookupErr(err)
}

func (db *PgRepository) GetRoomsByHost(userId int) ([]Room, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s WHERE r.host_id = $1 ORDER BY r.updated_at DESC", roomColumns, roomJoins),
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRooms(rows)
}

// SearchRooms returns the rooms whose name, description or topic name
// contains the query, case-insensitively. An empty query matches all
// rooms. Most recently updated first.
func (db *PgRepository) SearchRooms(query string) ([]Room, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s WHERE r.name ILIKE $1 OR r.description ILIKE $1 OR t.name ILIKE $1 "+
			"ORDER BY r.updated_at DESC", roomColumns, roomJoins),
		searchPattern(query),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRooms(rows)
}

// SearchMessagesByTopic returns messages whose room's topic name contains
// the query. This filter is intentionally independent of SearchRooms: the
// home page activity panel matches on topic name only.
func (db *PgRepository) SearchMessagesByTopic(query string) ([]Message, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s JOIN topics t ON t.id = r.topic_id "+
			"WHERE t.name ILIKE $1 ORDER BY m.created_at DESC", messageColumns, messageJoins),
		searchPattern(query),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CreateMessage inserts a message and adds its author to the room's
// participant set in the same transaction. The participant insert is a
// no-op if the author already participates.
func (db *PgRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO messages (room_id, user_id, body, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, room_id, user_id, body, created_at",
		params.RoomId,
		params.UserId,
		params.Body,
		time.Now().UTC(),
	)

	var msg Message
	err = res.Scan(
		&msg.Id,
		&msg.RoomId,
		&msg.UserId,
		&msg.Body,
		&msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	_, err = tx.Exec(addParticipantQuery, params.RoomId, params.UserId, time.Now().UTC())
	if err != nil {
		return Message{}, err
	}

	_, err = tx.Exec("UPDATE rooms SET updated_at = $2 WHERE id = $1", params.RoomId, time.Now().UTC())
	if err != nil {
		return Message{}, err
	}

	if err = tx.Commit(); err != nil {
		return Message{}, err
	}

	return msg, nil
}

func (db *PgRepository) DeleteMessage(messageId int) error {
	_, err := db.conn.Exec("DELETE FROM messages WHERE id = $1", messageId)
	return err
}

func (db *PgRepository) GetMessageById(messageId int) (Message, error) {
	row := db.conn.QueryRow(
		fmt.Sprintf("SELECT %s %s WHERE m.id = $1 LIMIT 1", messageColumns, messageJoins),
		messageId,
	)

	var msg Message
	err := row.Scan(
		&msg.Id,
		&msg.RoomId,
		&msg.RoomName,
		&msg.RoomExternalId,
		&msg.UserId,
		&msg.Username,
		&msg.Body,
		&msg.CreatedAt,
	)

	return msg, wrapLookupErr(err)
}

func (db *PgRepository) GetMessagesByRoom(roomId int) ([]Message, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s WHERE m.room_id = $1 ORDER BY m.created_at", messageColumns, messageJoins),
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (db *PgRepository) GetMessagesByUser(userId int) ([]Message, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s WHERE m.user_id = $1 ORDER BY m.created_at DESC", messageColumns, messageJoins),
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (db *PgRepository) ListMessages() ([]Message, error) {
	rows, err := db.conn.Query(
		fmt.Sprintf("SELECT %s %s ORDER BY m.created_at DESC", messageColumns, messageJoins),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (db *PgRepository) GetParticipants(roomId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT u.id, u.username, u.display_name, u.avatar_url FROM room_participants p "+
			"JOIN users u ON u.id = p.user_id WHERE p.room_id = $1 ORDER BY p.created_at",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Username, &u.DisplayName, &u.AvatarURL); err != nil {
			return nil, err
		}

		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRooms(rows rowScanner) ([]Room, error) {
	var rooms = make([]Room, 0)
	for rows.Next() {
		var room Room
		err := rows.Scan(
			&room.Id,
			&room.ExternalId,
			&room.Name,
			&room.Description,
			&room.HostId,
			&room.HostUsername,
			&room.TopicId,
			&room.TopicName,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func scanMessages(rows rowScanner) ([]Message, error) {
	var messages = make([]Message, 0)
	for rows.Next() {
		var msg Message
		err := rows.Scan(
			&msg.Id,
			&msg.RoomId,
			&msg.RoomName,
			&msg.RoomExternalId,
			&msg.UserId,
			&msg.Username,
			&msg.Body,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
