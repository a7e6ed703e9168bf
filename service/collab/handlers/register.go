package handlers

import "Alvin/service/collab"

// RegisterAll wires every event handler into the server's dispatcher.
func RegisterAll(s *collab.Server) {
	d := s.Disp()
	d.Register(NewConnectHandler())
	d.Register(NewJoinHandler())
	d.Register(NewLeaveHandler())
	d.Register(NewSceneUpdatedHandler())
	d.Register(NewCursorPositionHandler())
	d.Register(NewCommentAddedHandler())
	d.Register(NewTypingStatusHandler())
	d.Register(NewRoomStatusHandler())
}
