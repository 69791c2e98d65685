package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

// handleSnapshotPush applies the pushed snapshot as the party's new ground
// truth, then relays the same blob to the peer device.
func (that *Server) handleSnapshotPush(ctx context.Context, party string, device *client, message *Message) error {
	state, err := that.matches.PushSnapshot(ctx, message.Payload)
	if err != nil {
		return fmt.Errorf("failed to push snapshot: %w", err)
	}

	if state.PartyCode != party {
		return fmt.Errorf("snapshot party %q does not match connection party %q", state.PartyCode, party)
	}

	if err = that.send(device, "snapshot:ack", ResponsePayload{State: state}); err != nil {
		return err
	}

	for _, peer := range that.peers(party, device) {
		if err = that.send(peer, "snapshot:update", ResponsePayload{State: state}); err != nil {
			that.logger.Error("failed to relay snapshot", "party", party, "error", err)
		}
	}

	return nil
}

// handleSnapshotPull answers with the party's latest stored snapshot.
func (that *Server) handleSnapshotPull(ctx context.Context, party string, device *client, _ *Message) error {
	state, err := that.matches.Snapshot(ctx, party)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	return that.send(device, "snapshot:state", ResponsePayload{State: state})
}

func (that *Server) send(device *client, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = device.write(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(device *client, reason string) {
	if err := that.send(device, "error", ResponsePayload{Error: reason}); err != nil {
		that.logger.Error("failed to send error message", "error", err)
	}
}
