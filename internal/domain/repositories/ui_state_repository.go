package repositories

import "object-detection-demo/internal/domain/entities"

type UIStateRepository interface {
	// Publish replaces the whole state and returns it with its revision stamped.
	Publish(state entities.UIState) entities.UIState

	Current() entities.UIState

	// Subscribe delivers every published snapshot until cancel is called.
	Subscribe() (<-chan entities.UIState, func())
}
