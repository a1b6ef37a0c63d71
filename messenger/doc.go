/*
Package messenger is an in-process execution mechanism for the buses.

Dispatch runs in two phases. The send phase looks up channels for the message,
from the last TransportNamesMarker or else from the routing table, and hands
the envelope to the sender of each channel, attaching a SentMarker. A message
that was sent is not handled locally, and a message carrying a ReceivedMarker
is never sent again. The handle phase runs every handler registered for the
message type once, attaching a HandledMarker per success.
*/
package messenger
