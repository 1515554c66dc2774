package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/homescan/live-gateway/internal/tools"
)

// Toolset binds the appliance tools to one session's store, state and frame
// ring. Handlers run serially on the session's receive loop; the guarded
// structures carry their own locks because other goroutines read them.
type Toolset struct {
	store  *Store
	state  *State
	frames *FrameRing
}

// NewToolset wires the tool handlers to their backing state.
func NewToolset(store *Store, state *State, frames *FrameRing) *Toolset {
	return &Toolset{store: store, state: state, frames: frames}
}

// Definitions returns the tool declarations for a live session, in the order
// they are announced to the model.
func (t *Toolset) Definitions() []tools.Definition {
	return []tools.Definition{
		{
			Name:        "detect_appliance",
			Description: "Record initial detection of an appliance seen in the video feed.",
			Params: map[string]tools.Param{
				"appliance_type": {Type: "string", Description: "Type of appliance detected (e.g., \"refrigerator\", \"oven\")"},
			},
			Required: []string{"appliance_type"},
			Handler:  t.detectAppliance,
		},
		{
			Name:        "confirm_appliance_detection",
			Description: "Confirm whether to add the detected appliance to the inventory.",
			Params: map[string]tools.Param{
				"user_wants_to_capture": {Type: "boolean", Description: "True if the user confirms the detection, false to skip it"},
			},
			Required: []string{"user_wants_to_capture"},
			Handler:  t.confirmDetection,
		},
		{
			Name:        "update_appliance_details",
			Description: "Update the pending appliance with make and model information.",
			Params: map[string]tools.Param{
				"make":  {Type: "string", Description: "Manufacturer/brand name"},
				"model": {Type: "string", Description: "Model number or identifier"},
			},
			Required: []string{"make", "model"},
			Handler:  t.updateDetails,
		},
		{
			Name:        "get_inventory_summary",
			Description: "Get the current appliance inventory summary.",
			Handler:     t.inventorySummary,
		},
		{
			Name:        "monitor_video_stream",
			Description: "Check the status of the incoming video stream and recent frames.",
			Handler:     t.monitorVideoStream,
		},
		{
			Name:        "request_frame_analysis",
			Description: "Prompt an explicit analysis of the most recent video frame for appliances.",
			Handler:     t.requestFrameAnalysis,
		},
	}
}

func (t *Toolset) detectAppliance(ctx context.Context, args map[string]any) (map[string]any, error) {
	applianceType, ok := args["appliance_type"].(string)
	if !ok || applianceType == "" {
		return nil, fmt.Errorf("appliance_type is required")
	}

	// Detection is only meaningful after the user has taken a turn.
	if !t.state.UserHasSpoken() {
		return map[string]any{
			"status":  "error",
			"message": "Wait for user to speak before detecting appliances.",
		}, nil
	}

	if !t.store.TrySetPending(applianceType) {
		return map[string]any{
			"status":  "warning",
			"message": "Already processing an appliance. Finish current one first.",
		}, nil
	}

	return map[string]any{
		"status":         "detected",
		"message":        fmt.Sprintf("Ask user if they want to add this %s", applianceType),
		"appliance_type": applianceType,
	}, nil
}

func (t *Toolset) confirmDetection(ctx context.Context, args map[string]any) (map[string]any, error) {
	wants, ok := args["user_wants_to_capture"].(bool)
	if !ok {
		return nil, fmt.Errorf("user_wants_to_capture is required")
	}

	if !wants {
		if _, pending := t.store.Pending(); !pending {
			return map[string]any{"status": "error", "message": "No pending appliance to confirm"}, nil
		}
		t.store.RejectPending()
		return map[string]any{"status": "rejected", "message": "Appliance skipped, continuing to scan"}, nil
	}

	applianceID := uuid.New().String()
	appliance, ok := t.store.ConfirmPending(applianceID)
	if !ok {
		return map[string]any{"status": "error", "message": "No pending appliance to confirm"}, nil
	}

	// Remember which appliance the follow-up details belong to.
	t.state.SetCurrentApplianceID(applianceID)

	return map[string]any{
		"status":         "confirmed",
		"appliance_id":   applianceID,
		"message":        "Please ask user for make and model information",
		"appliance_type": appliance.Type,
	}, nil
}

func (t *Toolset) updateDetails(ctx context.Context, args map[string]any) (map[string]any, error) {
	makeName, ok := args["make"].(string)
	if !ok || makeName == "" {
		return nil, fmt.Errorf("make is required")
	}
	model, ok := args["model"].(string)
	if !ok || model == "" {
		return nil, fmt.Errorf("model is required")
	}

	total, ok := t.store.CompletePending(t.state.CurrentApplianceID(), makeName, model)
	if !ok {
		return map[string]any{"status": "error", "message": "No matching pending appliance found"}, nil
	}

	t.state.ClearCurrentApplianceID()

	return map[string]any{
		"status":           "completed",
		"message":          fmt.Sprintf("Added %s %s to inventory", makeName, model),
		"total_appliances": total,
	}, nil
}

func (t *Toolset) inventorySummary(ctx context.Context, args map[string]any) (map[string]any, error) {
	if !t.state.UserHasSpoken() {
		return map[string]any{
			"status":  "error",
			"message": "Wait for user to speak before checking inventory.",
		}, nil
	}

	appliances := t.store.Appliances()
	return map[string]any{
		"status":           "success",
		"total_appliances": len(appliances),
		"appliances":       appliances,
	}, nil
}

func (t *Toolset) monitorVideoStream(ctx context.Context, args map[string]any) (map[string]any, error) {
	count := t.frames.Count()
	if count == 0 {
		return map[string]any{
			"status":      "no_frames",
			"message":     "No video frames received yet. Waiting for video stream...",
			"frame_count": 0,
		}, nil
	}

	latest, _ := t.frames.Latest()
	return map[string]any{
		"status":                 "receiving",
		"message":                "Video stream active. Receiving frames at ~1 FPS.",
		"frame_count":            count,
		"latest_frame_timestamp": latest.ReceivedAt.Format(time.RFC3339),
		"frame_size_bytes":       len(latest.Data),
		"note": "The video frames are visible to you through the live connection. " +
			"Analyze what you see to detect appliances.",
	}, nil
}

func (t *Toolset) requestFrameAnalysis(ctx context.Context, args map[string]any) (map[string]any, error) {
	latest, ok := t.frames.Latest()
	if !ok {
		return map[string]any{
			"status":      "no_frames",
			"instruction": "No video frames available. Wait for user to start camera.",
		}, nil
	}

	return map[string]any{
		"status": "ready",
		"instruction": "Examine the current video frame carefully. Look for home appliances " +
			"(refrigerator, oven, dishwasher, microwave, washing machine, dryer, etc.). " +
			"If you detect an appliance:\n" +
			"1. Call detect_appliance with the appliance type\n" +
			"2. Ask the user if they want to add it to inventory\n" +
			"3. Use confirm_appliance_detection with their response",
		"latest_frame_timestamp": latest.ReceivedAt.Format(time.RFC3339),
		"note":                   "You can see the video frames directly through the live connection.",
	}, nil
}
